package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/source"
)

func testSource() source.Source {
	return source.NewFileSource(map[string]lineage.Graph{
		"etl": {
			Nodes: []lineage.Node{
				{ID: "1", Name: "ods_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
				{ID: "2", Name: "dwd_orders", WorkFlowPublishStatus: "1", SchedulePublishStatus: "0"},
				{ID: "3", Name: "ads_sales", WorkFlowPublishStatus: "0"},
			},
			Edges: []lineage.Edge{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}},
		},
	})
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(testSource(), cache.NewMemoryCache(), nil, logger)
	ts := httptest.NewServer(New(runner, logger, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e), "body: %s", body)
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, body := get(t, ts, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var h healthBody
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Build.Version)
}

func TestLineage(t *testing.T) {
	ts := newTestServer(t, Config{})
	path := "/api/v1/projects/etl/lineage?ids=2&focus=2&labels=true&locale=zh"

	resp, body := get(t, ts, path)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get(HeaderCache))

	var doc struct {
		Series []struct {
			Data []struct {
				Name     string `json:"name"`
				Category string `json:"category"`
			} `json:"data"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.Series, 1)
	require.Len(t, doc.Series[0].Data, 3)
	assert.Equal(t, "当前选择", doc.Series[0].Data[1].Category)

	resp, again := get(t, ts, path)
	assert.Equal(t, "hit", resp.Header.Get(HeaderCache))
	assert.Equal(t, body, again)
}

func TestLineageErrors(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"missing ids", "/api/v1/projects/etl/lineage", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad labels", "/api/v1/projects/etl/lineage?ids=1&labels=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad id", "/api/v1/projects/etl/lineage?ids=a%20b", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad locale", "/api/v1/projects/etl/lineage?ids=1&locale=!!", http.StatusBadRequest, "INVALID_LOCALE"},
		{"unknown workflow", "/api/v1/projects/etl/lineage?ids=404", http.StatusNotFound, "WORKFLOW_NOT_FOUND"},
		{"unknown project", "/api/v1/projects/nope/lineage?ids=1", http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", "/api/v1/nothing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, string(decodeError(t, body).Code))
		})
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, body := get(t, ts, "/api/v1/projects/etl/workflows?search=ORDERS")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sb searchBody
	require.NoError(t, json.Unmarshal(body, &sb))
	require.Len(t, sb.Workflows, 2)

	_, body = get(t, ts, "/api/v1/projects/etl/workflows?search=zzz")
	assert.JSONEq(t, `{"workflows":[]}`, string(body))

	resp, body = get(t, ts, "/api/v1/projects/etl/workflows?search="+strings.Repeat("x", 300))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, body).Message, "search")
}

func TestRelations(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, body := get(t, ts, "/api/v1/projects/etl/workflows/2/relations")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"relations":[{"source":"1","target":"2"},{"source":"2","target":"3"}]}`, string(body))
}

func TestLineageDOT(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, body := get(t, ts, "/api/v1/projects/etl/lineage.dot?ids=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "graphviz")
	assert.Contains(t, string(body), "digraph lineage")
	assert.Equal(t, "miss", resp.Header.Get(HeaderCache))

	resp, _ = get(t, ts, "/api/v1/projects/etl/lineage.dot?ids=1")
	assert.Equal(t, "hit", resp.Header.Get(HeaderCache))
}

func TestLineageSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	ts := newTestServer(t, Config{})

	resp, body := get(t, ts, "/api/v1/projects/etl/lineage.svg?ids=1&labels=1")
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<svg")
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, _ := get(t, ts, "/healthz")
	_, err := uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err)

	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(HeaderRequestID))

	req.Header.Set(HeaderRequestID, "<script>")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "<script>", resp.Header.Get(HeaderRequestID))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetHTTPHooks(hooks)
	observability.SetBuildHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, Config{Gatherer: reg})
	get(t, ts, "/api/v1/projects/etl/lineage?ids=1")
	get(t, ts, "/api/v1/projects/etl/lineage?ids=2")

	assert.Equal(t, 2.0, testutil.ToFloat64(hooks.HTTPRequestsTotal.WithLabelValues(
		http.MethodGet, "/api/v1/projects/{project}/lineage", "200")))

	resp, body := get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "kinship_builds_total")
	assert.Contains(t, string(body), "kinship_http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, _ := get(t, ts, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeShutdown(t *testing.T) {
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(testSource(), nil, nil, logger)
	srv := New(runner, logger, Config{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
