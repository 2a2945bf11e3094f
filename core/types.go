package core

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the assistant.
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one entry of the caller-owned conversation history.
type ConversationMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// RecentHistory returns a copy of the last n entries of history. Older entries
// are dropped; the input slice is never modified. n <= 0 yields no history.
func RecentHistory(history []ConversationMessage, n int) []ConversationMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]ConversationMessage, len(history))
	copy(out, history)
	return out
}

// ToolDescriptor describes a remote tool discovered through the execution
// transport. Schema is nil when the per-tool schema fetch failed.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
	// Inferred is true when Schema came from the static naming-convention
	// table instead of the tool itself. Inferred schemas are best effort.
	Inferred bool `json:"inferred,omitempty"`
}

// PlannedAction is a single step of a model-produced plan.
type PlannedAction struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
}

// ExecutionResult is the outcome of one tool invocation. Payload carries the
// transport's result fields verbatim (content blocks, structured content, ...).
type ExecutionResult struct {
	IsError bool
	Payload map[string]any
}

// MarshalJSON flattens the payload next to the isError flag so the result is
// rendered the way the transport reported it.
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		out[k] = v
	}
	out["isError"] = r.IsError
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *ExecutionResult) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["isError"].(bool); ok {
		r.IsError = v
	}
	delete(raw, "isError")
	r.Payload = raw
	return nil
}
