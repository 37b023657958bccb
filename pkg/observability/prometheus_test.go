package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks_Build(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheusHooks(prometheus.NewRegistry())

	p.OnBuildStart(ctx, "etl", 1)
	p.OnBuildComplete(ctx, "etl", map[string]int{"active": 1, "unpublished": 3}, 20*time.Millisecond, false, nil)
	p.OnBuildComplete(ctx, "etl", map[string]int{"unpublished": 2}, time.Millisecond, true, nil)
	p.OnBuildComplete(ctx, "etl", nil, time.Millisecond, false, errors.New("boom"))

	if got := testutil.ToFloat64(p.BuildsTotal.WithLabelValues("ok", "miss")); got != 1 {
		t.Errorf("builds ok/miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.BuildsTotal.WithLabelValues("ok", "hit")); got != 1 {
		t.Errorf("builds ok/hit = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.BuildsTotal.WithLabelValues("error", "miss")); got != 1 {
		t.Errorf("builds error/miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.NodesClassified.WithLabelValues("unpublished")); got != 5 {
		t.Errorf("unpublished nodes = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(p.BuildDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestPrometheusHooks_Cache(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheusHooks(prometheus.NewRegistry())

	p.OnCacheMiss(ctx, "option")
	p.OnCacheSet(ctx, "option", 512)
	p.OnCacheHit(ctx, "option")
	p.OnCacheHit(ctx, "option")

	if got := testutil.ToFloat64(p.CacheEvents.WithLabelValues("option", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.CacheEvents.WithLabelValues("option", "miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.CacheBytesWritten.WithLabelValues("option")); got != 512 {
		t.Errorf("bytes = %v, want 512", got)
	}
}

func TestPrometheusHooks_HTTP(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheusHooks(reg)

	p.OnRequest(ctx, "GET", "/healthz")
	if got := testutil.ToFloat64(p.HTTPInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	p.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
	if got := testutil.ToFloat64(p.HTTPInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}

	expected := `
# HELP kinship_http_requests_total Total number of HTTP requests
# TYPE kinship_http_requests_total counter
kinship_http_requests_total{method="GET",route="/healthz",status="200"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "kinship_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestPrometheusHooks_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	NewPrometheusHooks(reg)
}
