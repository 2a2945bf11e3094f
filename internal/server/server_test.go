package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/metrics"
	"github.com/hupe1980/actionmesh/runner"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	out  *runner.Outcome
	last runner.Request
}

func (f *fakeAgent) Run(ctx context.Context, req runner.Request) *runner.Outcome {
	f.last = req
	return f.out
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAgent_Success(t *testing.T) {
	agent := &fakeAgent{out: &runner.Outcome{
		Success:   true,
		Plan:      []core.PlannedAction{{Tool: "content_items.list", Parameters: map[string]any{"page": 1}}},
		Results:   []core.ExecutionResult{{Payload: map[string]any{"content": "x"}}},
		Response:  "done",
		Logs:      []string{"Discovered 1 tools"},
		ModelUsed: "m",
	}}
	s := New(agent)

	rec := do(t, s, http.MethodPost, "/api/agent", `{
		"prompt":"list the top 5 items",
		"pageContext":{"pageInfo":{"id":"p1"}},
		"conversationHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["response"])
	assert.Equal(t, "m", body["modelUsed"])
	assert.Len(t, body["actionPlan"], 1)
	results := body["results"].([]any)
	assert.Equal(t, false, results[0].(map[string]any)["isError"])

	assert.Equal(t, "list the top 5 items", agent.last.Prompt)
	assert.Equal(t, "p1", agent.last.PageID())
	require.Len(t, agent.last.ConversationHistory, 2)
	assert.Equal(t, core.RoleAssistant, agent.last.ConversationHistory[1].Role)
}

func TestAgent_FailureIs500WithBody(t *testing.T) {
	agent := &fakeAgent{out: &runner.Outcome{
		Success: false,
		Error:   "Could not connect to the tool service",
		Details: "connect to tool transport: refused",
		Logs:    []string{"Request failed"},
	}}
	rec := do(t, New(agent), http.MethodPost, "/api/agent", `{"prompt":"x"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Could not connect to the tool service", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.NotEmpty(t, body["logs"])
}

func TestAgent_BadRequests(t *testing.T) {
	agent := &fakeAgent{}
	s := New(agent)

	rec := do(t, s, http.MethodPost, "/api/agent", `{"prompt":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "prompt is required")

	rec = do(t, s, http.MethodPost, "/api/agent", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	assert.Empty(t, agent.last.Prompt)
}

func TestHealthzAndNotFound(t *testing.T) {
	s := New(&fakeAgent{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	rec.ModelRetry("anthropic")

	s := New(&fakeAgent{}, func(o *Options) { o.Gatherer = reg })
	res := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `actionmesh_model_retries_total{provider="anthropic"} 1`)
}

func TestPreflight(t *testing.T) {
	s := New(&fakeAgent{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/preflight", "").Code)

	up := New(&fakeAgent{}, func(o *Options) { o.Probe = func(context.Context) bool { return true } })
	rec := do(t, up, http.MethodGet, "/api/preflight", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	down := New(&fakeAgent{}, func(o *Options) { o.Probe = func(context.Context) bool { return false } })
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/api/preflight", "").Code)
}
