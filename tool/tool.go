// Package tool implements the tool catalog: discovery of the remote tools an
// execution transport exposes, schema resolution with a best-effort naming
// convention fallback, and a compact, bounded description for prompts.
package tool

import (
	"context"

	"github.com/hupe1980/actionmesh/core"
)

// Info is a tool as reported by a transport listing. InputSchema and
// Parameters are optional; transports fill whichever the remote side exposes.
type Info struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Transport is the execution-transport collaborator: the service boundary
// through which tools are listed, introspected and invoked.
//
// A Transport is owned by a single request for its lifetime and is never
// shared. Implementations need not be safe for concurrent use.
type Transport interface {
	// ListTools returns every tool the remote side exposes, in its order.
	ListTools(ctx context.Context) ([]Info, error)

	// GetToolSchema returns the tool definition for name. The returned map may
	// carry "inputSchema" and/or "parameters"; either may be absent.
	GetToolSchema(ctx context.Context, name string) (map[string]any, error)

	// CallTool invokes name with args. A remote error result is reported via
	// ExecutionResult.IsError, a failed call via the error.
	CallTool(ctx context.Context, name string, args map[string]any) (core.ExecutionResult, error)

	// Close releases the session.
	Close() error
}

// Connector opens a fresh transport session. Failures should be reported as
// *core.TransportConnectError.
type Connector func(ctx context.Context) (Transport, error)
