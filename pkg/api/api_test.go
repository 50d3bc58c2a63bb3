package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pathtrace/pkg/observability"
	"github.com/matzehuels/pathtrace/pkg/observability/prom"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
)

const exampleGraph = `{"A":{"B":1,"C":4},"B":{"C":1,"D":2},"C":{"D":1}}`

func newTestHandlers(opts Options) *Handlers {
	logger := log.New(io.Discard)
	return New(pipeline.NewRunner(nil, nil, logger), logger, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var out map[string]errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["error"]
}

func TestHealth(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	rec := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRequestIDIsKept(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestSearch(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	body := `{"graph":` + exampleGraph + `,"start":"A","goal":"D","algorithm":"ucs","formats":["json","dot"]}`
	rec := do(t, h, http.MethodPost, "/v1/search", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.True(t, resp.Result.Reachable())
	assert.Equal(t, 3.0, resp.Result.Cost)
	assert.Equal(t, "A", resp.Result.Path[0])
	assert.Equal(t, "D", resp.Result.Path[len(resp.Result.Path)-1])
	assert.NotContains(t, resp.Artifacts, "json")
	assert.Contains(t, resp.Artifacts["dot"], "graph G {")
}

func TestSearchWithHeuristicWrapper(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	body := `{"graph":` + exampleGraph + `,"heuristic":{"D":{"A":2,"B":2,"C":1,"D":0}},"config":{"algorithm":"astar"},"start":"A","goal":"D"}`
	rec := do(t, h, http.MethodPost, "/v1/search", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3.0, resp.Result.Cost)
	assert.Empty(t, resp.Artifacts)
}

func TestSearchUnreachable(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	body := `{"graph":{"A":{"B":1},"C":{"D":1}},"start":"A","goal":"D","algorithm":"ucs"}`
	rec := do(t, h, http.MethodPost, "/v1/search", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "run_id")
	var result map[string]any
	require.NoError(t, json.Unmarshal(raw["result"], &result))
	assert.Contains(t, result, "cost")
	assert.Nil(t, result["cost"])
	assert.Equal(t, false, result["reachable"])

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, math.IsInf(resp.Result.Cost, 1))
	assert.Empty(t, resp.Result.Path)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing graph", `{"start":"A","goal":"D"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing start", `{"graph":` + exampleGraph + `,"goal":"D"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown algorithm", `{"graph":` + exampleGraph + `,"start":"A","goal":"D","algorithm":"bfs"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"graph":` + exampleGraph + `,"start":"A","goal":"D","colour":"red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", `{"graph":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad graph", `{"graph":{"A":5},"start":"A","goal":"B"}`, http.StatusUnprocessableEntity, "INVALID_FORMAT"},
		{"unknown node", `{"graph":` + exampleGraph + `,"start":"A","goal":"Z"}`, http.StatusNotFound, "UNKNOWN_NODE"},
	}

	h := newTestHandlers(Options{}).Router()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/search", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestSearchUnknownNodeListsAvailable(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	rec := do(t, h, http.MethodPost, "/v1/search", `{"graph":`+exampleGraph+`,"start":"A","goal":"Z"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, []string{"Z"}, body.Missing)
	assert.Equal(t, []string{"A", "B", "C", "D"}, body.Available)
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestHandlers(Options{MaxBodyBytes: 16}).Router()
	rec := do(t, h, http.MethodPost, "/v1/search", `{"graph":`+exampleGraph+`,"start":"A","goal":"D"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNodes(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	rec := do(t, h, http.MethodPost, "/v1/nodes", `{"graph":{"A":{"B":1},"C":{}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp nodesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A", "B", "C"}, resp.Nodes)
	assert.Equal(t, 3, resp.NodeCount)
	assert.Equal(t, 1, resp.EdgeCount)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	rec := do(t, h, http.MethodGet, "/v1/search", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	prom.New(reg).Register()

	h := newTestHandlers(Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}).Router()
	do(t, h, http.MethodPost, "/v1/search", `{"graph":`+exampleGraph+`,"start":"A","goal":"Z"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `pathtrace_http_requests_total{method="POST",route="/v1/search",status="404"} 1`)
	assert.Contains(t, out, `pathtrace_http_errors_total{code="UNKNOWN_NODE",route="/v1/search"} 1`)
}

func TestMetricsNotMounted(t *testing.T) {
	h := newTestHandlers(Options{}).Router()
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(newTestHandlers(Options{}).Router(), log.New(io.Discard), ServerOptions{Addr: ln.Addr().String()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Post(url, "application/json", bytes.NewReader(nil))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
