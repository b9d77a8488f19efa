package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/marquee/internal/metrics"
	"github.com/Nixie-Tech-LLC/marquee/internal/model"
	"github.com/Nixie-Tech-LLC/marquee/internal/player"
	"github.com/Nixie-Tech-LLC/marquee/internal/schedule"
)

const sweepConcurrency = 4

type DisplayLister interface {
	ListPairedDisplays(ctx context.Context) ([]model.Display, error)
}

type Resolver interface {
	Resolve(ctx context.Context, display model.Display) (schedule.Resolution, error)
}

// Fingerprints remembers what each display was last told to show.
type Fingerprints interface {
	SwapFingerprint(ctx context.Context, displayID int, fp string) (bool, error)
}

type Notifier interface {
	SendToScreen(deviceID string, message []byte) error
}

// Command is the payload pushed on a screen's command topic.
type Command struct {
	Type       string `json:"type"`
	Source     string `json:"source"`
	ScheduleID *int   `json:"scheduleId,omitempty"`
}

// Watcher pushes a refresh to every screen whose resolved content changed
// since the previous sweep, so schedule boundaries take effect without
// waiting for the next poll.
type Watcher struct {
	displays     DisplayLister
	resolver     Resolver
	fingerprints Fingerprints
	notifier     Notifier
	interval     time.Duration
	metrics      *metrics.Metrics
}

func NewWatcher(displays DisplayLister, resolver Resolver, fps Fingerprints, notifier Notifier, interval time.Duration, m *metrics.Metrics) *Watcher {
	return &Watcher{
		displays:     displays,
		resolver:     resolver,
		fingerprints: fps,
		notifier:     notifier,
		interval:     interval,
		metrics:      m,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Msg("refresh watcher started")
	for {
		if err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("refresh sweep failed")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("refresh watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep checks every paired display once. Per-display failures are logged
// and do not stop the sweep.
func (w *Watcher) Sweep(ctx context.Context) error {
	list, err := w.displays.ListPairedDisplays(ctx)
	if err != nil {
		return fmt.Errorf("list paired displays: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, d := range list {
		if d.DeviceID == nil || *d.DeviceID == "" {
			continue
		}
		g.Go(func() error {
			if err := w.check(gctx, d); err != nil {
				log.Warn().Err(err).Int("display_id", d.ID).Msg("refresh check failed")
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *Watcher) check(ctx context.Context, d model.Display) error {
	res, err := w.resolver.Resolve(ctx, d)
	if err != nil {
		return err
	}
	fp, err := player.Fingerprint(res)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	changed, err := w.fingerprints.SwapFingerprint(ctx, d.ID, fp)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	cmd := Command{Type: "refresh", Source: res.Source()}
	if active, ok := res.(schedule.ActiveSchedule); ok {
		id := active.Schedule.ID
		cmd.ScheduleID = &id
	}
	msg, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	if err := w.notifier.SendToScreen(*d.DeviceID, msg); err != nil {
		w.metrics.ObserveRefresh(false)
		return err
	}
	w.metrics.ObserveRefresh(true)
	log.Info().Int("display_id", d.ID).Str("source", cmd.Source).Msg("refresh pushed to screen")
	return nil
}
