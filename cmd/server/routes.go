package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	clientapi "github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/metrics"
	"github.com/Nixie-Tech-LLC/marquee/internal/redis"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, svc clientapi.PlayerService, cache *redis.Cache, m *metrics.Metrics) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics(m))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
			middleware.RequestIDHeader,
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{}, api.HealthModule(healthChecks(cache)...))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/tv",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Displays:  store,
	},
		clientapi.PlayerModule(svc),
	)

	if !cfg.UseSpaces {
		r.Static("/uploads", cfg.UploadDir)
	}
}

// healthChecks lists the dependencies /healthz reports on. Redis is only
// listed when it is configured.
func healthChecks(cache *redis.Cache) []api.HealthCheck {
	checks := []api.HealthCheck{
		{Name: "database", Check: func(ctx context.Context) error { return db.Ping(ctx, db.DB) }},
	}
	if cache != nil {
		checks = append(checks, api.HealthCheck{Name: "redis", Check: cache.Ping})
	}
	return checks
}
