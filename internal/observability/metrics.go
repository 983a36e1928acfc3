// Package observability provides structured logging setup and Prometheus metrics.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodrec"

// latencyBuckets are Prometheus-style buckets (seconds) for request and encode durations.
var latencyBuckets = []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 30}

// Metrics is the single metrics interface for the service. Call sites accept
// a nil Metrics when metrics are disabled.
type Metrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
	RecordEncode(ctx context.Context, kind string, duration time.Duration)
	RecordRecommendFallback(ctx context.Context)
	RecordHit(ctx context.Context, cacheName string)
	RecordMiss(ctx context.Context, cacheName string)
}

type promMetrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	encodeDuration   *prometheus.HistogramVec
	fallbacks        prometheus.Counter
	queryCacheEvents *prometheus.CounterVec
}

// NewMetrics registers the service collectors on a private registry and
// returns the metrics plus the /metrics handler.
func NewMetrics() (Metrics, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &promMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status_class"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   latencyBuckets,
		}, []string{"method", "route"}),
		encodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Time spent encoding text, by kind (catalog or query).",
			Buckets:   latencyBuckets,
		}, []string{"kind"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_fallback_total",
			Help:      "Recommendations that found no healthier candidate and returned the source item.",
		}),
		queryCacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_events_total",
			Help:      "Encode cache lookups by cache name and result (hit or miss).",
		}, []string{"cache", "result"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.encodeDuration, m.fallbacks, m.queryCacheEvents)

	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (m *promMetrics) RecordRequest(_ context.Context, method, route, statusClass string, duration time.Duration) {
	m.requests.WithLabelValues(method, route, statusClass).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *promMetrics) RecordEncode(_ context.Context, kind string, duration time.Duration) {
	m.encodeDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *promMetrics) RecordRecommendFallback(_ context.Context) {
	m.fallbacks.Inc()
}

func (m *promMetrics) RecordHit(_ context.Context, cacheName string) {
	m.queryCacheEvents.WithLabelValues(cacheName, "hit").Inc()
}

func (m *promMetrics) RecordMiss(_ context.Context, cacheName string) {
	m.queryCacheEvents.WithLabelValues(cacheName, "miss").Inc()
}
