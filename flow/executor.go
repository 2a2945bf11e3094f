// Package flow executes a parsed plan against an execution transport.
//
// Steps run strictly in plan order, one at a time: later steps may depend on
// the side effects of earlier ones, so there is no concurrency and no
// rollback. The first invalid or failing step aborts the run; results of the
// steps that already completed are returned alongside the error.
package flow

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/metrics"
	"github.com/hupe1980/actionmesh/tool"
)

// ExecutorOptions configure an Executor.
type ExecutorOptions struct {
	Logger  logging.Logger
	Metrics *metrics.Recorder
}

// Executor runs plans step by step.
type Executor struct {
	opts ExecutorOptions
}

// NewExecutor creates an executor.
func NewExecutor(optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Executor{opts: opts}
}

// Execute validates and runs every action of plan in order. For each step the
// tool must be present in catalog (else *core.ToolNotFoundError), the call
// must succeed and the result must not be flagged isError (else
// *core.ToolExecutionError). Audit lines go to the audit log attached to ctx.
//
// The returned results are aligned with plan up to the first failure.
func (e *Executor) Execute(ctx context.Context, plan []core.PlannedAction, catalog *tool.Catalog, transport tool.Transport) ([]core.ExecutionResult, error) {
	audit := core.AuditLogFromContext(ctx)
	results := make([]core.ExecutionResult, 0, len(plan))

	for i, action := range plan {
		step := i + 1

		if !catalog.Has(action.Tool) {
			err := &core.ToolNotFoundError{Tool: action.Tool, Step: step}
			audit.Add("Step %d: tool %s not found", step, action.Tool)
			e.opts.Logger.Error("flow.step.not_found", "step", step, "tool", action.Tool)
			e.opts.Metrics.PlanStep(err)
			return results, err
		}

		audit.Add("Step %d: executing %s", step, action.Tool)
		start := time.Now()
		result, err := e.invoke(ctx, transport, action)
		dur := time.Since(start)

		if err != nil {
			execErr := &core.ToolExecutionError{Tool: action.Tool, Step: step, Err: err}
			audit.Add("Step %d: %s failed: %v", step, action.Tool, err)
			e.opts.Logger.Error("flow.step.failed", "step", step, "tool", action.Tool, "duration_ms", dur.Milliseconds(), "error", err.Error())
			e.opts.Metrics.PlanStep(execErr)
			return results, execErr
		}

		if result.IsError {
			r := result
			execErr := &core.ToolExecutionError{Tool: action.Tool, Step: step, Result: &r}
			audit.Add("Step %d: %s returned an error result", step, action.Tool)
			e.opts.Logger.Error("flow.step.failed", "step", step, "tool", action.Tool, "duration_ms", dur.Milliseconds(), "error", execErr.Error())
			e.opts.Metrics.PlanStep(execErr)
			return results, execErr
		}

		results = append(results, result)
		audit.Add("Step %d: %s succeeded", step, action.Tool)
		e.opts.Logger.Info("flow.step.executed", "step", step, "tool", action.Tool, "duration_ms", dur.Milliseconds())
		e.opts.Metrics.PlanStep(nil)
	}

	return results, nil
}

// invoke calls the transport, turning a panic into an error.
func (e *Executor) invoke(ctx context.Context, transport tool.Transport, action core.PlannedAction) (result core.ExecutionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
			e.opts.Logger.Error("flow.step.panic", "tool", action.Tool, "recover", r)
		}
	}()

	args := action.Parameters
	if args == nil {
		args = map[string]any{}
	}
	return transport.CallTool(ctx, action.Tool, args)
}

// panicError converts a recovered panic value to an error keeping the stack.
func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }

// Stack returns the goroutine stack captured at recovery.
func (p *panicErr) Stack() []byte { return p.stack }
