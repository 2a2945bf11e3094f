package runner

import (
	"github.com/hupe1980/actionmesh/core"
)

// PageInfo identifies the page the user is looking at.
type PageInfo struct {
	ID string `json:"id"`
}

// PageContext is optional context supplied by the caller's UI.
type PageContext struct {
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// Request is one inbound orchestration request.
type Request struct {
	Prompt              string                     `json:"prompt"`
	PageContext         *PageContext               `json:"pageContext,omitempty"`
	ConversationHistory []core.ConversationMessage `json:"conversationHistory,omitempty"`
}

// PageID returns the page identifier or "".
func (r Request) PageID() string {
	if r.PageContext == nil || r.PageContext.PageInfo == nil {
		return ""
	}
	return r.PageContext.PageInfo.ID
}

// Outcome is the single terminal result of a run.
//
// On success Plan, Results and Response are set. On failure Error holds a
// human-readable message and Details a short diagnostic; Plan and Results
// hold whatever was produced before the failure. Logs is the audit log in
// both cases.
type Outcome struct {
	Success   bool                   `json:"success"`
	Plan      []core.PlannedAction   `json:"actionPlan"`
	Results   []core.ExecutionResult `json:"results"`
	Response  string                 `json:"response,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Details   string                 `json:"details,omitempty"`
	Logs      []string               `json:"logs"`
	ModelUsed string                 `json:"modelUsed"`

	// UsedFallback reports that the fallback plan replaced the model's plan.
	UsedFallback bool `json:"usedFallback,omitempty"`
	// Truncated reports that the planning response hit the token ceiling.
	Truncated bool `json:"truncated,omitempty"`
}
