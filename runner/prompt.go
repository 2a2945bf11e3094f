package runner

import (
	"encoding/json"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/internal/util"
	"github.com/hupe1980/actionmesh/model"
)

const planningSystemPrompt = `You are an assistant that fulfils requests by planning calls to the tools listed below.

Available tools:
{{.Tools}}

Respond with a JSON array only. Do not add any text before or after it. Each element must be an object of the form:
{"tool": "<exact tool name>", "parameters": {<arguments>}, "reasoning": "<why this step is needed>"}

Rules:
- Use only tool names from the list above, spelled exactly as shown.
- Use the parameter names and shapes each tool expects.
- Do not ask for confirmation or further details; plan the actions directly.
- Continue the conversation: use earlier turns as context and do not repeat actions that were already completed.
- Return [] when no action is needed.`

const planningUserPrompt = `{{.Prompt}}{{if .PageID}}

Current page ID: {{.PageID}}{{end}}`

const summarySystemPrompt = `You report to the user what was done on their behalf. Summarize the executed actions and their results in a few sentences of plain language. Only state what the results show.`

const summaryUserPrompt = `Request: {{.Prompt}}

Executed actions:
{{.Plan}}

Results:
{{.Results}}`

// maxSummaryInputChars bounds the serialized results fed back for the summary.
const maxSummaryInputChars = 12000

func (r *Runner) planningRequest(req Request, toolText string) (model.Request, error) {
	system, err := util.RenderTemplate(planningSystemPrompt, map[string]any{"Tools": toolText})
	if err != nil {
		return model.Request{}, err
	}
	user, err := util.RenderTemplate(planningUserPrompt, map[string]any{
		"Prompt": req.Prompt,
		"PageID": req.PageID(),
	})
	if err != nil {
		return model.Request{}, err
	}

	history := core.RecentHistory(req.ConversationHistory, r.opts.HistoryLimit)
	messages := make([]model.Message, 0, len(history)+1)
	for _, h := range history {
		messages = append(messages, model.Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, model.Message{Role: core.RoleUser, Content: user})

	return model.Request{
		Model:       r.opts.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   r.opts.PlanMaxTokens,
		Temperature: r.opts.Temperature,
	}, nil
}

func (r *Runner) summaryRequest(req Request, actions []core.PlannedAction, results []core.ExecutionResult) (model.Request, error) {
	user, err := util.RenderTemplate(summaryUserPrompt, map[string]any{
		"Prompt":  req.Prompt,
		"Plan":    compactJSON(actions),
		"Results": compactJSON(results),
	})
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		Model:       r.opts.Model,
		System:      summarySystemPrompt,
		Messages:    []model.Message{{Role: core.RoleUser, Content: user}},
		MaxTokens:   r.opts.SummaryMaxTokens,
		Temperature: r.opts.Temperature,
	}, nil
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	s := string(b)
	if len(s) <= maxSummaryInputChars {
		return s
	}
	return util.TruncateBytes(s, maxSummaryInputChars) + "...(truncated)"
}
