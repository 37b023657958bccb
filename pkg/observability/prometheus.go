package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface by recording Prometheus
// metrics.
type PrometheusHooks struct {
	BuildsTotal         *prometheus.CounterVec
	BuildDuration       *prometheus.HistogramVec
	NodesClassified     *prometheus.CounterVec
	SourceQueryDuration *prometheus.HistogramVec
	CacheEvents         *prometheus.CounterVec
	CacheBytesWritten   *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// NewPrometheusHooks registers the kinship metrics with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		BuildsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinship_builds_total",
				Help: "Lineage builds by outcome",
			},
			[]string{"status", "cache"},
		),
		BuildDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kinship_build_duration_seconds",
				Help:    "Lineage build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"cache"},
		),
		NodesClassified: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinship_nodes_classified_total",
				Help: "Nodes classified per category",
			},
			[]string{"category"},
		),
		SourceQueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kinship_source_query_duration_seconds",
				Help:    "Lineage store query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "status"},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinship_cache_events_total",
				Help: "Cache hits, misses and writes",
			},
			[]string{"key_type", "event"},
		),
		CacheBytesWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinship_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinship_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kinship_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kinship_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (p *PrometheusHooks) OnBuildStart(context.Context, string, int) {}

func (p *PrometheusHooks) OnBuildComplete(_ context.Context, _ string, counts map[string]int, d time.Duration, hit bool, err error) {
	p.BuildsTotal.WithLabelValues(status(err), cacheLabel(hit)).Inc()
	p.BuildDuration.WithLabelValues(cacheLabel(hit)).Observe(d.Seconds())
	for cat, n := range counts {
		p.NodesClassified.WithLabelValues(cat).Add(float64(n))
	}
}

func (p *PrometheusHooks) OnSourceQuery(_ context.Context, op string, d time.Duration, err error) {
	p.SourceQueryDuration.WithLabelValues(op, status(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheBytesWritten.WithLabelValues(keyType).Add(float64(size))
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {
	p.HTTPInFlight.Inc()
}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.HTTPInFlight.Dec()
	p.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ BuildHooks = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks  = (*PrometheusHooks)(nil)
)
