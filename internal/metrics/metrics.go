package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Enrichment outcomes.
const (
	EnrichComputed = "computed"
	EnrichCached   = "cached"
	EnrichFailed   = "failed"
)

// Metrics owns a private registry. Every method is safe on a nil receiver.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	resolveFailures prometheus.Counter
	enrichments     *prometheus.CounterVec
	enrichDuration  prometheus.Histogram
	refreshes       *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_resolutions_total",
		Help: "Content resolutions by winning source",
	}, []string{"source"})

	resolveFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "player_resolution_failures_total",
		Help: "Resolutions aborted by a storage failure",
	})

	enrichments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_media_enrichments_total",
		Help: "Media enrichment attempts by outcome",
	}, []string{"result"})

	enrichDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "player_media_enrichment_seconds",
		Help:    "Time spent computing size and checksum for one media item",
		Buckets: prometheus.DefBuckets,
	})

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "player_refresh_notifications_total",
		Help: "Refresh commands pushed to screens",
	}, []string{"result"})

	registry.MustRegister(
		requestDuration, requestTotal,
		resolutions, resolveFailures,
		enrichments, enrichDuration,
		refreshes,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		resolutions:     resolutions,
		resolveFailures: resolveFailures,
		enrichments:     enrichments,
		enrichDuration:  enrichDuration,
		refreshes:       refreshes,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, s).Inc()
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveResolutionFailure() {
	if m == nil {
		return
	}
	m.resolveFailures.Inc()
}

func (m *Metrics) ObserveEnrichment(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(result).Inc()
	if result != EnrichCached {
		m.enrichDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) ObserveRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.refreshes.WithLabelValues(result).Inc()
}
