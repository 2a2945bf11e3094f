package plan

import "github.com/hupe1980/actionmesh/core"

// FallbackOptions configure the degraded plan used when model output cannot
// be parsed.
type FallbackOptions struct {
	// Tool is the listing tool invoked by the fallback plan.
	Tool string
	// PageParam is the parameter name that scopes the listing to a page.
	PageParam string
	// PageSize bounds the listing.
	PageSize int
}

// DefaultFallbackOptions returns the fallback used by the orchestrator when
// nothing else is configured.
func DefaultFallbackOptions() FallbackOptions {
	return FallbackOptions{
		Tool:      "content_items.list",
		PageParam: "pageId",
		PageSize:  10,
	}
}

// Fallback builds a single conservative listing action. When pageID is
// non-empty the listing is scoped to that page.
func Fallback(pageID string, optFns ...func(o *FallbackOptions)) []core.PlannedAction {
	opts := DefaultFallbackOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	params := map[string]any{
		"page":     1,
		"pageSize": opts.PageSize,
	}
	reasoning := "Model output could not be parsed; listing basic content instead."
	if pageID != "" && opts.PageParam != "" {
		params[opts.PageParam] = pageID
		reasoning = "Model output could not be parsed; listing basic content for the current page instead."
	}

	return []core.PlannedAction{{
		Tool:       opts.Tool,
		Parameters: params,
		Reasoning:  reasoning,
	}}
}
