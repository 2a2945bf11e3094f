package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/tool"
)

// ToolCall records one CallTool invocation.
type ToolCall struct {
	Name string
	Args map[string]any
}

// FakeTransport is a scripted tool.Transport.
// Example:
//
//	tr := NewFakeTransport().
//		Tool("content_items.list", "List items", schema).
//		Result("content_items.list", map[string]any{"items": []any{}})
//
// Tools without a scripted result return an empty, successful result.
type FakeTransport struct {
	mu           sync.Mutex
	tools        []tool.Info
	schemas      map[string]map[string]any
	schemaErrors map[string]error
	results      map[string]core.ExecutionResult
	callErrors   map[string]error
	panics       map[string]any
	listErr      error
	calls        []ToolCall
	closed       int
}

// NewFakeTransport creates an empty fake transport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		schemas:      map[string]map[string]any{},
		schemaErrors: map[string]error{},
		results:      map[string]core.ExecutionResult{},
		callErrors:   map[string]error{},
		panics:       map[string]any{},
	}
}

// Tool registers a tool with an optional input schema (chainable).
func (f *FakeTransport) Tool(name, description string, inputSchema map[string]any) *FakeTransport {
	f.tools = append(f.tools, tool.Info{Name: name, Description: description})
	if inputSchema != nil {
		f.schemas[name] = map[string]any{"name": name, "inputSchema": inputSchema}
	} else {
		f.schemas[name] = map[string]any{"name": name}
	}
	return f
}

// SchemaError makes GetToolSchema fail for name (chainable).
func (f *FakeTransport) SchemaError(name string, err error) *FakeTransport {
	f.schemaErrors[name] = err
	return f
}

// ListError makes ListTools fail (chainable).
func (f *FakeTransport) ListError(err error) *FakeTransport { f.listErr = err; return f }

// Result scripts a successful result payload for name (chainable).
func (f *FakeTransport) Result(name string, payload map[string]any) *FakeTransport {
	f.results[name] = core.ExecutionResult{Payload: payload}
	return f
}

// ErrorResult scripts an isError result for name (chainable).
func (f *FakeTransport) ErrorResult(name string, payload map[string]any) *FakeTransport {
	f.results[name] = core.ExecutionResult{IsError: true, Payload: payload}
	return f
}

// CallError makes CallTool fail with err for name (chainable).
func (f *FakeTransport) CallError(name string, err error) *FakeTransport {
	f.callErrors[name] = err
	return f
}

// Panic makes CallTool panic with v for name (chainable).
func (f *FakeTransport) Panic(name string, v any) *FakeTransport {
	f.panics[name] = v
	return f
}

// ListTools implements tool.Transport.
func (f *FakeTransport) ListTools(ctx context.Context) ([]tool.Info, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]tool.Info, len(f.tools))
	copy(out, f.tools)
	return out, nil
}

// GetToolSchema implements tool.Transport.
func (f *FakeTransport) GetToolSchema(ctx context.Context, name string) (map[string]any, error) {
	if err, ok := f.schemaErrors[name]; ok {
		return nil, err
	}
	def, ok := f.schemas[name]
	if !ok {
		return nil, errors.New("unknown tool " + name)
	}
	return def, nil
}

// CallTool implements tool.Transport.
func (f *FakeTransport) CallTool(ctx context.Context, name string, args map[string]any) (core.ExecutionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ToolCall{Name: name, Args: args})
	f.mu.Unlock()

	if v, ok := f.panics[name]; ok {
		panic(v)
	}
	if err, ok := f.callErrors[name]; ok {
		return core.ExecutionResult{}, err
	}
	if r, ok := f.results[name]; ok {
		return r, nil
	}
	return core.ExecutionResult{Payload: map[string]any{}}, nil
}

// Close implements tool.Transport.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

// Calls returns the recorded invocations in order.
func (f *FakeTransport) Calls() []ToolCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ToolCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Closed returns how often Close was called.
func (f *FakeTransport) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Connector returns a tool.Connector that always yields f.
func (f *FakeTransport) Connector() tool.Connector {
	return func(ctx context.Context) (tool.Transport, error) { return f, nil }
}
