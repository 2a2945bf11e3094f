package core

import (
	"errors"
	"fmt"

	"github.com/hupe1980/actionmesh/internal/util"
)

// ErrInvalidRequest is returned when a model request violates its input
// constraints (no messages, non-positive token ceiling).
var ErrInvalidRequest = errors.New("invalid model request")

// TransientUpstreamError reports a rate-limited model call. It is the only
// error class the model gateway retries.
type TransientUpstreamError struct {
	Provider   string `json:"provider"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *TransientUpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s rate limited (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Message)
}

func (e *TransientUpstreamError) Unwrap() error { return e.Err }

// MalformedPlanError is returned by the plan parser once every recovery
// strategy has failed. Err is the failure of the final attempt.
type MalformedPlanError struct {
	Raw string
	Err error
}

func (e *MalformedPlanError) Error() string {
	return fmt.Sprintf("malformed plan: %v", e.Err)
}

func (e *MalformedPlanError) Unwrap() error { return e.Err }

// ToolNotFoundError reports a planned step naming a tool that is absent from
// the catalog. Step is 1-based.
type ToolNotFoundError struct {
	Tool string
	Step int
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("step %d: tool %q not found", e.Step, e.Tool)
}

// ToolExecutionError reports a step whose invocation failed: either the
// transport returned an error result (Result.IsError) or the call itself
// failed (Err). Step is 1-based.
type ToolExecutionError struct {
	Tool   string
	Step   int
	Result *ExecutionResult
	Err    error
}

func (e *ToolExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d: tool %q failed: %v", e.Step, e.Tool, e.Err)
	}
	return fmt.Sprintf("step %d: tool %q returned an error result: %s", e.Step, e.Tool, describePayload(e.Result))
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// TransportConnectError reports that the execution-transport session could
// not be established.
type TransportConnectError struct {
	Endpoint string
	Err      error
}

func (e *TransportConnectError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("connect to tool transport: %v", e.Err)
	}
	return fmt.Sprintf("connect to tool transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportConnectError) Unwrap() error { return e.Err }

func describePayload(r *ExecutionResult) string {
	if r == nil {
		return "<nil>"
	}
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", r.Payload)
	}
	const maxPayloadChars = 500
	if len(b) > maxPayloadChars {
		return util.TruncateBytes(string(b), maxPayloadChars) + "..."
	}
	return string(b)
}
