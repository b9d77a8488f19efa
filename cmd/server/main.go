package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	"github.com/Nixie-Tech-LLC/marquee/internal/logging"
	"github.com/Nixie-Tech-LLC/marquee/internal/metrics"
	"github.com/Nixie-Tech-LLC/marquee/internal/mqtt"
	"github.com/Nixie-Tech-LLC/marquee/internal/player"
	"github.com/Nixie-Tech-LLC/marquee/internal/redis"
	"github.com/Nixie-Tech-LLC/marquee/internal/refresh"
	"github.com/Nixie-Tech-LLC/marquee/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(cfg.LogLevel, cfg.Environment)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.DB.Close()

	if err := db.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	clock, err := schedule.LoadZoneClock(cfg.PlayerTimezone)
	if err != nil {
		return err
	}

	var cache *redis.Cache
	if cfg.RedisAddress != "" {
		redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		defer redis.Rdb.Close()
		cache = redis.NewCache(redis.Rdb)
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, continuing without cache")
		}
	}

	files, err := InitStorage(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	store := db.NewStore(db.DB)
	enricher := player.NewEnricher(files, cache, m, player.EnrichOptions{
		Concurrency: cfg.EnrichConcurrency,
		Timeout:     cfg.EnrichTimeout,
	})
	svc := player.NewService(store, clock, enricher, m)

	api.ExposeErrorDetail = !cfg.IsProduction()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	RegisterRoutes(r, cfg, store, svc, cache, m)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.ServerAddress).Str("timezone", clock.Location().String()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.MQTTBrokerURL != "" && cache != nil && cfg.RefreshInterval > 0 {
		publisher, err := mqtt.Connect(cfg.MQTTBrokerURL, "marquee-refresh")
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, screens will rely on polling")
		} else {
			defer publisher.Close()
			watcher := refresh.NewWatcher(store, svc, cache, publisher, cfg.RefreshInterval, m)
			g.Go(func() error {
				if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
	}

	return g.Wait()
}
