package player

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/marquee/internal/metrics"
	"github.com/Nixie-Tech-LLC/marquee/internal/redis"
	"github.com/Nixie-Tech-LLC/marquee/internal/storage"
)

const (
	DefaultEnrichConcurrency = 8
	DefaultEnrichTimeout     = 5 * time.Second
)

type EnrichOptions struct {
	Concurrency int
	Timeout     time.Duration
}

// Enricher attaches file size and checksum to media references.
type Enricher struct {
	files   storage.Storage
	cache   *redis.Cache
	metrics *metrics.Metrics
	limit   int
	timeout time.Duration
	flight  singleflight.Group
}

type fileFacts struct {
	size     int64
	checksum string
	cached   bool
}

func NewEnricher(files storage.Storage, cache *redis.Cache, m *metrics.Metrics, opts EnrichOptions) *Enricher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultEnrichConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultEnrichTimeout
	}
	return &Enricher{
		files:   files,
		cache:   cache,
		metrics: m,
		limit:   opts.Concurrency,
		timeout: opts.Timeout,
	}
}

// Enrich fills FileSize and Checksum on every media it can. A media that
// fails or times out is left untouched. Enrich returns once every item has
// either finished or given up.
func (e *Enricher) Enrich(ctx context.Context, media []*packets.MediaResponse) {
	if e == nil || e.files == nil || len(media) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(e.limit)
	for _, m := range media {
		if m == nil || m.URL == "" {
			continue
		}
		g.Go(func() error {
			e.enrichOne(ctx, m)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Enricher) enrichOne(ctx context.Context, m *packets.MediaResponse) {
	itemCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	// The shared computation outlives any single caller's cancellation but
	// never its own timeout.
	ch := e.flight.DoChan(m.URL, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		return e.facts(shared, m.URL)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			e.fail(m, r.Err, start)
			return
		}
		facts := r.Val.(fileFacts)
		size, sum := facts.size, facts.checksum
		m.FileSize = &size
		m.Checksum = &sum
		if facts.cached {
			e.metrics.ObserveEnrichment(metrics.EnrichCached, time.Since(start))
		} else {
			e.metrics.ObserveEnrichment(metrics.EnrichComputed, time.Since(start))
		}
	case <-itemCtx.Done():
		e.fail(m, itemCtx.Err(), start)
	}
}

func (e *Enricher) fail(m *packets.MediaResponse, err error, start time.Time) {
	e.metrics.ObserveEnrichment(metrics.EnrichFailed, time.Since(start))
	log.Debug().Err(err).Int("media_id", m.ID).Str("url", m.URL).Msg("media enrichment skipped")
}

func (e *Enricher) facts(ctx context.Context, mediaURL string) (fileFacts, error) {
	info, err := e.files.Stat(ctx, mediaURL)
	if err != nil {
		return fileFacts{}, err
	}
	if sum, ok := e.cache.Checksum(ctx, mediaURL, info.Size, info.ModTime); ok {
		return fileFacts{size: info.Size, checksum: sum, cached: true}, nil
	}

	rc, err := e.files.Open(ctx, mediaURL)
	if err != nil {
		return fileFacts{}, err
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.Copy(h, contextReader{ctx: ctx, r: rc}); err != nil {
		return fileFacts{}, fmt.Errorf("hash %s: %w", mediaURL, err)
	}
	sum := "sha256:" + hex.EncodeToString(h.Sum(nil))

	e.cache.SetChecksum(ctx, mediaURL, info.Size, info.ModTime, sum)
	return fileFacts{size: info.Size, checksum: sum}, nil
}

// contextReader stops a long copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
