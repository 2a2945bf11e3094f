package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/flow"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/metrics"
	"github.com/hupe1980/actionmesh/model"
	"github.com/hupe1980/actionmesh/plan"
	"github.com/hupe1980/actionmesh/tool"
)

// ErrEmptyPrompt is reported when a request carries no prompt.
var ErrEmptyPrompt = errors.New("prompt is required")

// Options holds configuration overrides passed to New().
type Options struct {
	// Model overrides the provider's default model name.
	Model string
	// PlanMaxTokens is the token ceiling of the planning call.
	PlanMaxTokens int
	// SummaryMaxTokens is the token ceiling of the summary call.
	SummaryMaxTokens int
	// Temperature for both calls; 0 keeps planning deterministic.
	Temperature float64
	// HistoryLimit is how many recent conversation messages are forwarded.
	HistoryLimit int
	// MaxTools and MaxDescriptionChars bound the tool description.
	MaxTools            int
	MaxDescriptionChars int
	// Fallback configures the plan used when model output is unparseable.
	Fallback plan.FallbackOptions
	Logger   logging.Logger
	Metrics  *metrics.Recorder
}

// DefaultOptions returns the orchestration defaults: 4096 planning tokens,
// 1024 summary tokens, temperature 0, the 10 most recent history messages and
// 20 tools / 2000 characters of tool description.
func DefaultOptions() Options {
	return Options{
		PlanMaxTokens:       4096,
		SummaryMaxTokens:    1024,
		Temperature:         0,
		HistoryLimit:        10,
		MaxTools:            tool.DefaultMaxTools,
		MaxDescriptionChars: tool.DefaultMaxChars,
		Fallback:            plan.DefaultFallbackOptions(),
		Logger:              logging.NoOpLogger{},
	}
}

// Runner orchestrates requests. Public methods are safe for concurrent use.
type Runner struct {
	model     model.Provider
	connector tool.Connector
	executor  *flow.Executor
	opts      Options
}

// New constructs a Runner. llm is usually a *model.Gateway so rate limits are
// retried; connector opens a fresh transport session for every request.
func New(llm model.Provider, connector tool.Connector, optFns ...func(o *Options)) *Runner {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		model:     llm,
		connector: connector,
		executor: flow.NewExecutor(func(o *flow.ExecutorOptions) {
			o.Logger = opts.Logger
			o.Metrics = opts.Metrics
		}),
		opts: opts,
	}
}

// run carries the state of a single request.
type run struct {
	req     Request
	audit   *core.AuditLog
	outcome *Outcome
}

// Run executes one request and returns its terminal outcome. It never
// returns an error; failures are reported through Outcome.Success == false.
func (r *Runner) Run(ctx context.Context, req Request) *Outcome {
	start := time.Now()
	audit := core.NewAuditLog(r.opts.Logger)
	ctx = core.WithAuditLog(ctx, audit)

	st := &run{
		req:   req,
		audit: audit,
		outcome: &Outcome{
			ModelUsed: r.modelName(),
		},
	}

	if err := r.execute(ctx, st); err != nil {
		r.fail(st, err)
	} else {
		st.outcome.Success = true
	}

	st.outcome.Logs = audit.Entries()
	if st.outcome.Plan == nil {
		st.outcome.Plan = []core.PlannedAction{}
	}
	if st.outcome.Results == nil {
		st.outcome.Results = []core.ExecutionResult{}
	}

	dur := time.Since(start)
	r.opts.Metrics.Run(st.outcome.Success, dur)
	r.opts.Logger.Info("runner.run.finished",
		"success", st.outcome.Success,
		"actions", len(st.outcome.Plan),
		"results", len(st.outcome.Results),
		"fallback", st.outcome.UsedFallback,
		"duration_ms", dur.Milliseconds(),
	)
	return st.outcome
}

func (r *Runner) execute(ctx context.Context, st *run) error {
	if strings.TrimSpace(st.req.Prompt) == "" {
		return ErrEmptyPrompt
	}

	transport, err := r.connector(ctx)
	if err != nil {
		return err
	}
	st.audit.Add("Connected to tool transport")
	defer func() {
		if cErr := transport.Close(); cErr != nil {
			st.audit.Add("Failed to close tool transport: %v", cErr)
			r.opts.Logger.Warn("runner.transport.close_failed", "error", cErr.Error())
		}
	}()

	catalog, err := tool.Discover(ctx, transport, func(o *tool.CatalogOptions) { o.Logger = r.opts.Logger })
	if err != nil {
		return fmt.Errorf("discover tools: %w", err)
	}
	st.audit.Add("Discovered %d tools", catalog.Len())
	toolText := tool.DescribeCompact(catalog.Tools(), r.opts.MaxTools, r.opts.MaxDescriptionChars)

	planReq, err := r.planningRequest(st.req, toolText)
	if err != nil {
		return fmt.Errorf("build planning prompt: %w", err)
	}
	st.audit.Add("Requesting plan (%d history messages)", len(planReq.Messages)-1)

	resp, err := r.model.Send(ctx, planReq)
	if err != nil {
		return err
	}
	if resp.Model != "" {
		st.outcome.ModelUsed = resp.Model
	}
	if resp.Truncated() {
		st.outcome.Truncated = true
		st.audit.Add("Warning: plan response hit the %d token limit and may be incomplete", planReq.MaxTokens)
		r.opts.Logger.Warn("runner.plan.truncated", "max_tokens", planReq.MaxTokens)
	}

	actions := r.parsePlan(st, resp.Text)
	st.outcome.Plan = actions

	results, err := r.executor.Execute(ctx, actions, catalog, transport)
	st.outcome.Results = results
	if err != nil {
		return err
	}
	st.audit.Add("Executed %d action(s)", len(results))

	st.outcome.Response = r.summarize(ctx, st, actions, results)
	return nil
}

// parsePlan parses the model output, substituting the fallback plan when
// nothing can be recovered.
func (r *Runner) parsePlan(st *run, text string) []core.PlannedAction {
	parsed, err := plan.Parse(text)
	if err != nil {
		r.opts.Metrics.PlanParsed("failed")
		r.opts.Logger.Warn("runner.plan.malformed", "error", err.Error())
		st.outcome.UsedFallback = true

		fallback := r.opts.Fallback
		actions := plan.Fallback(st.req.PageID(), func(o *plan.FallbackOptions) { *o = fallback })
		st.audit.Add("Could not parse plan (%v); falling back to %s", err, fallback.Tool)
		return actions
	}

	r.opts.Metrics.PlanParsed(string(parsed.Strategy))
	if parsed.Strategy == plan.StrategyDirect {
		st.audit.Add("Parsed plan with %d action(s)", len(parsed.Actions))
	} else {
		st.audit.Add("Recovered %d action(s) from truncated plan (%s)", len(parsed.Actions), parsed.Strategy)
	}
	return parsed.Actions
}

// summarize asks the model for a summary; failures degrade to a generic
// message because the actions already ran.
func (r *Runner) summarize(ctx context.Context, st *run, actions []core.PlannedAction, results []core.ExecutionResult) string {
	generic := fmt.Sprintf("Completed %d action(s) successfully.", len(results))

	sumReq, err := r.summaryRequest(st.req, actions, results)
	if err != nil {
		st.audit.Add("Could not build summary prompt: %v", err)
		return generic
	}

	resp, err := r.model.Send(ctx, sumReq)
	if err != nil {
		st.audit.Add("Summary generation failed: %v", err)
		r.opts.Logger.Warn("runner.summary.failed", "error", err.Error())
		return generic
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		st.audit.Add("Summary generation returned no text")
		return generic
	}
	st.audit.Add("Generated summary")
	return text
}

func (r *Runner) fail(st *run, err error) {
	st.outcome.Success = false
	st.outcome.Error, st.outcome.Details = describeError(err)
	st.audit.Add("Request failed: %s", st.outcome.Error)
	r.opts.Logger.Error("runner.run.failed", "error", err.Error())
}

func (r *Runner) modelName() string {
	if r.opts.Model != "" {
		return r.opts.Model
	}
	return r.model.Info().Name
}
