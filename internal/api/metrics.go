package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mindforge/focusd/internal/cache"
)

// Metrics holds the server's Prometheus collectors. It doubles as the
// engine's CacheObserver so hit/miss counters cover both the engine-level
// and handler-level artifact kinds.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	LatencyHistogram *prometheus.HistogramVec
	CacheCounter     *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewMetrics creates and registers all collectors on a private registry, so
// multiple servers (tests included) never collide on registration.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusd_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		LatencyHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "focusd_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CacheCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusd_cache_requests_total",
				Help: "Cache lookups by artifact kind and result",
			},
			[]string{"kind", "result"},
		),
		registry: registry,
	}

	registry.MustRegister(m.RequestCounter)
	registry.MustRegister(m.LatencyHistogram)
	registry.MustRegister(m.CacheCounter)

	return m
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.RequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.LatencyHistogram.WithLabelValues(method, path).Observe(duration.Seconds())
}

// CacheHit implements engine.CacheObserver.
func (m *Metrics) CacheHit(kind cache.Kind) {
	m.CacheCounter.WithLabelValues(string(kind), "hit").Inc()
}

// CacheMiss implements engine.CacheObserver.
func (m *Metrics) CacheMiss(kind cache.Kind) {
	m.CacheCounter.WithLabelValues(string(kind), "miss").Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
