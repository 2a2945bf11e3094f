package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   string
	calls  int
	last   []byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if req.Body != nil {
		f.last, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(f.body))),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func newTestProvider(rt http.RoundTripper) *Provider {
	return New(func(o *Options) {
		o.APIKey = "test-key"
		o.HTTPClient = &http.Client{Transport: rt}
	})
}

func TestProvider_SendReturnsTextAndStopReason(t *testing.T) {
	fake := &fakeTransport{status: 200, body: `{
		"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-20241022",
		"content":[{"type":"text","text":"[{\"tool\":\"a\""}],
		"stop_reason":"max_tokens","usage":{"input_tokens":3,"output_tokens":4096}}`}
	p := newTestProvider(fake)

	resp, err := p.Send(context.Background(), model.Request{
		System:    "plan only",
		Messages:  []model.Message{{Role: core.RoleUser, Content: "list items"}},
		MaxTokens: 4096,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"tool":"a"`, resp.Text)
	assert.True(t, resp.Truncated())
	assert.Equal(t, 1, fake.calls)

	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(fake.last, &body))
	assert.Equal(t, string(DefaultModel), body.Model)
	assert.Equal(t, 4096, body.MaxTokens)
	require.Len(t, body.System, 1)
	assert.Equal(t, "plan only", body.System[0].Text)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
}

func TestProvider_RateLimitIsClassifiedAndNotRetried(t *testing.T) {
	fake := &fakeTransport{status: 429, body: `{"type":"error","error":{"type":"rate_limit_error","message":"Number of request tokens has exceeded your per-minute rate limit"}}`}
	p := newTestProvider(fake)

	_, err := p.Send(context.Background(), model.Request{
		Messages:  []model.Message{{Role: core.RoleUser, Content: "hi"}},
		MaxTokens: 10,
	})
	require.Error(t, err)
	var tErr *core.TransientUpstreamError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, 429, tErr.StatusCode)
	assert.True(t, model.IsRateLimited(err))
	assert.Equal(t, 1, fake.calls, "SDK retries must be disabled")
}

func TestProvider_OtherErrorsAreNotRateLimits(t *testing.T) {
	fake := &fakeTransport{status: 400, body: `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`}
	p := newTestProvider(fake)

	_, err := p.Send(context.Background(), model.Request{
		Messages:  []model.Message{{Role: core.RoleUser, Content: "hi"}},
		MaxTokens: 10,
	})
	require.Error(t, err)
	assert.False(t, model.IsRateLimited(err))
}

func TestBuildMessages_MergesAndLeadsWithUser(t *testing.T) {
	msgs := buildMessages([]model.Message{
		{Role: core.RoleAssistant, Content: "hello"},
		{Role: core.RoleUser, Content: "one"},
		{Role: core.RoleUser, Content: "two"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}
