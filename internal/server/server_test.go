package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeOrchestrator struct {
	submitErr error
	submitted []string
	opts      pipeline.Options
	cancelled []string
	filter    pipeline.Filter
	snapshots map[string]pipeline.RunSnapshot
	batchURLs []string
}

func (f *fakeOrchestrator) Submit(_ context.Context, url string, opts pipeline.Options) (*pipeline.Handle, error) {
	if url == "" {
		return nil, pipeline.ErrEmptyURL
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, url)
	f.opts = opts
	return &pipeline.Handle{RunID: "run_1"}, nil
}

func (f *fakeOrchestrator) Execute(context.Context, string, pipeline.Options) pipeline.Outcome {
	return pipeline.Outcome{}
}

func (f *fakeOrchestrator) QuickTranscribe(_ context.Context, url string, _ pipeline.Options) (*pipeline.Handle, error) {
	if url == "" {
		return nil, pipeline.ErrEmptyURL
	}
	return &pipeline.Handle{RunID: "run_q", Quick: true}, nil
}

func (f *fakeOrchestrator) BatchExecute(_ context.Context, urls []string, _ pipeline.Options) pipeline.BatchSummary {
	f.batchURLs = urls
	return pipeline.BatchSummary{Total: len(urls), Succeeded: len(urls)}
}

func (f *fakeOrchestrator) Status(id string) (pipeline.RunSnapshot, bool) {
	snap, ok := f.snapshots[id]
	return snap, ok
}

func (f *fakeOrchestrator) Cancel(_ context.Context, id string) error {
	if _, ok := f.snapshots[id]; !ok {
		return pipeline.ErrRunNotFound
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeOrchestrator) History(filter pipeline.Filter) []pipeline.RunSnapshot {
	f.filter = filter
	return []pipeline.RunSnapshot{}
}

func (f *fakeOrchestrator) Stats() pipeline.Stats {
	return pipeline.Stats{Total: 3, Completed: 2, Failed: 1, SuccessRate: 67}
}

func (f *fakeOrchestrator) Config() pipeline.Config { return pipeline.Config{} }

type testEnv struct {
	orch     *fakeOrchestrator
	notifier progress.Notifier
	srv      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	orch := &fakeOrchestrator{snapshots: map[string]pipeline.RunSnapshot{
		"run_1": {ID: "run_1", URL: "https://example.com/v", Status: pipeline.StatusRunning, Active: true},
	}}
	notifier := progress.New(progress.Config{}, logger.Nop(), nil)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	cfg := config.ServerConfig{WSPath: "/ws/progress", MetricsPath: "/metrics"}

	srv := httptest.NewServer(New(cfg, orch, notifier, metrics, logger.Nop()).Handler())
	t.Cleanup(func() {
		notifier.Shutdown()
		srv.Close()
	})
	return &testEnv{orch: orch, notifier: notifier, srv: srv}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, response) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestExecute(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/pipeline/execute",
		`{"url":"https://example.com/v","options":{"translate":true,"targetLanguage":"en"}}`)

	assert.Equal(t, http.StatusAccepted, code)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"runId":"run_1"}`, string(resp.Data))
	assert.Equal(t, []string{"https://example.com/v"}, env.orch.submitted)
	assert.True(t, env.orch.opts.Translate)
	assert.Equal(t, "en", env.orch.opts.TargetLanguage)
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		submitErr error
		wantCode  int
	}{
		{"malformed json", `{"url":`, nil, http.StatusBadRequest},
		{"empty url", `{"url":""}`, nil, http.StatusBadRequest},
		{"at capacity", `{"url":"https://example.com/v"}`, &pipeline.CapacityError{Active: 3, Limit: 3}, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.orch.submitErr = tt.submitErr

			code, resp := env.do(t, http.MethodPost, "/api/pipeline/execute", tt.body)

			assert.Equal(t, tt.wantCode, code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestQuickTranscribe(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/pipeline/quick-transcribe", `{"url":"https://example.com/v"}`)

	assert.Equal(t, http.StatusAccepted, code)
	assert.JSONEq(t, `{"runId":"run_q","quick":true}`, string(resp.Data))
}

func TestBatch(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/pipeline/batch", `{"urls":["https://a","https://b"]}`)
	require.Equal(t, http.StatusOK, code)

	var sum pipeline.BatchSummary
	require.NoError(t, json.Unmarshal(resp.Data, &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, []string{"https://a", "https://b"}, env.orch.batchURLs)

	for _, body := range []string{`{"urls":[]}`, `{}`, `{"urls":["https://a",""]}`} {
		code, _ = env.do(t, http.MethodPost, "/api/pipeline/batch", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
	}
}

func TestStatusAndCancel(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/api/pipeline/status/run_1", "")
	require.Equal(t, http.StatusOK, code)
	var snap pipeline.RunSnapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.Equal(t, "run_1", snap.ID)

	code, _ = env.do(t, http.MethodGet, "/api/pipeline/status/run_x", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodDelete, "/api/pipeline/cancel/run_1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"run_1"}, env.orch.cancelled)

	code, _ = env.do(t, http.MethodDelete, "/api/pipeline/cancel/run_x", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHistoryFilter(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantFilter pipeline.Filter
	}{
		{"no filter", "", http.StatusOK, pipeline.Filter{}},
		{"status and limit", "?status=failed&limit=5", http.StatusOK, pipeline.Filter{Status: pipeline.StatusFailed, Limit: 5}},
		{"unknown status", "?status=bogus", http.StatusBadRequest, pipeline.Filter{}},
		{"bad limit", "?limit=-1", http.StatusBadRequest, pipeline.Filter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			code, _ := env.do(t, http.MethodGet, "/api/pipeline/history"+tt.query, "")

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantFilter, env.orch.filter)
		})
	}
}

func TestPipelineStats(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/api/pipeline/stats", "")

	assert.Equal(t, http.StatusOK, code)
	var stats pipeline.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 67, stats.SuccessRate)
}

func TestProgressRoutes(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var welcome progress.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, progress.EventConnected, welcome.Kind)

	code, resp := env.do(t, http.MethodGet, "/api/progress/stats", "")
	require.Equal(t, http.StatusOK, code)
	var stats progress.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 1, stats.TotalConnections)

	code, resp = env.do(t, http.MethodGet, "/api/progress/clients", "")
	require.Equal(t, http.StatusOK, code)
	var clients []progress.ClientInfo
	require.NoError(t, json.Unmarshal(resp.Data, &clients))
	require.Len(t, clients, 1)

	code, _ = env.do(t, http.MethodGet, "/api/progress/client/"+clients[0].ID, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodGet, "/api/progress/client/client_missing", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProgressEvents(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/api/progress/events", "")
	require.Equal(t, http.StatusOK, code)

	var kinds []progress.EventKind
	require.NoError(t, json.Unmarshal(resp.Data, &kinds))
	assert.Equal(t, progress.ProgressEvents, kinds)
	assert.Equal(t, progress.EventVideoDownloadStart, kinds[0])
	assert.Equal(t, progress.EventTaskError, kinds[len(kinds)-1])
}

func TestCapacityRetryAfter(t *testing.T) {
	env := newTestEnv(t)
	env.orch.submitErr = &pipeline.CapacityError{Active: 3, Limit: 3}

	resp, err := http.Post(env.srv.URL+"/api/pipeline/execute", "application/json", strings.NewReader(`{"url":"https://example.com/v"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
