package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/actionmesh/core"
)

// StopReasonMaxTokens is the normalized stop reason reported when the model
// hit the token ceiling. Providers map their vendor value onto it.
const StopReasonMaxTokens = "max_tokens"

// StopReasonEndTurn is the normalized stop reason for a natural finish.
const StopReasonEndTurn = "end_turn"

// Message is one role-tagged text turn sent to the model.
type Message struct {
	Role    core.Role `json:"role"`
	Content string    `json:"content"`
}

// Request captures a single model call.
type Request struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Validate enforces the gateway input constraints.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", core.ErrInvalidRequest)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", core.ErrInvalidRequest, r.MaxTokens)
	}
	return nil
}

// Response is the text produced by the model and why it stopped.
type Response struct {
	Text       string `json:"text"`
	StopReason string `json:"stop_reason"`
	Model      string `json:"model,omitempty"`
}

// Truncated reports whether the model stopped at the token ceiling.
func (r Response) Truncated() bool { return r.StopReason == StopReasonMaxTokens }

// Info contains metadata about a provider implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Provider is the minimal interface a language-model transport implements.
// Implementations should return *core.TransientUpstreamError for rate limits
// and must not retry on their own.
type Provider interface {
	Send(ctx context.Context, req Request) (Response, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// IsRateLimited reports whether err signals a rate limit: either a classified
// *core.TransientUpstreamError or an error whose message names one.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var tErr *core.TransientUpstreamError
	if errors.As(err, &tErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}

// NormalizeMessages merges consecutive same-role turns and prepends a user
// turn when the sequence starts with the assistant, which both supported
// vendors require after history trimming.
func NormalizeMessages(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs)+1)
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := m.Role
		if role != core.RoleAssistant {
			role = core.RoleUser
		}
		if len(out) == 0 && role == core.RoleAssistant {
			out = append(out, Message{Role: core.RoleUser, Content: "(earlier conversation)"})
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, Message{Role: role, Content: m.Content})
	}
	return out
}

// MockProvider is a lightweight in-memory Provider useful for tests & examples.
// Scripted replies are consumed in order; once exhausted it echoes the last
// user message.
type MockProvider struct {
	info Info

	mu       sync.Mutex
	replies  []mockReply
	requests []Request
}

type mockReply struct {
	resp Response
	err  error
}

// NewMockProvider constructs an empty MockProvider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse queues a successful reply (chainable).
func (m *MockProvider) AddResponse(text, stopReason string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{resp: Response{Text: text, StopReason: stopReason, Model: m.info.Name}})
	return m
}

// AddError queues a failing reply (chainable).
func (m *MockProvider) AddError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{err: err})
	return m
}

// Requests returns every request received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Send implements Provider.
func (m *MockProvider) Send(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		return r.resp, r.err
	}
	var last string
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", last), StopReason: StopReasonEndTurn, Model: m.info.Name}, nil
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
