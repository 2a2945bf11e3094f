package model

import (
	"context"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/metrics"
)

// GatewayOptions configures the retry policy of a Gateway.
type GatewayOptions struct {
	// MaxRetries bounds how many times a rate-limited call is retried. The
	// call is attempted at most MaxRetries+1 times.
	MaxRetries int
	// BaseDelay is the first backoff; attempt n waits BaseDelay * 2^(n-1).
	BaseDelay time.Duration
	Logger    logging.Logger
	Metrics   *metrics.Recorder
	// Sleep waits for d or until ctx is done. Tests replace it to observe the
	// backoff schedule without sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Gateway sends requests to a Provider, retrying only on rate limits.
type Gateway struct {
	provider Provider
	opts     GatewayOptions
}

// NewGateway wraps provider with the default policy (3 retries, 500ms base).
func NewGateway(provider Provider, optFns ...func(o *GatewayOptions)) *Gateway {
	opts := GatewayOptions{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		Logger:     logging.NoOpLogger{},
		Sleep:      sleepContext,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Gateway{provider: provider, opts: opts}
}

// Info returns the wrapped provider's metadata.
func (g *Gateway) Info() Info { return g.provider.Info() }

// Send validates req and forwards it to the provider. Rate-limited failures
// are retried with exponential backoff; every retry is written to the audit
// log attached to ctx (if any). Any other failure is returned immediately.
// When retries are exhausted the last error is returned.
func (g *Gateway) Send(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	info := g.provider.Info()
	audit := core.AuditLogFromContext(ctx)

	for attempt := 1; ; attempt++ {
		start := time.Now()
		resp, err := g.provider.Send(ctx, req)
		g.opts.Metrics.ModelRequest(info.Provider, err)
		if err == nil {
			g.opts.Logger.Debug("gateway.send.success",
				"provider", info.Provider,
				"model", req.Model,
				"attempt", attempt,
				"stop_reason", resp.StopReason,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		}

		if !IsRateLimited(err) || attempt > g.opts.MaxRetries {
			g.opts.Logger.Error("gateway.send.failed", "provider", info.Provider, "attempt", attempt, "error", err.Error())
			return Response{}, err
		}

		delay := g.opts.BaseDelay * time.Duration(1<<(attempt-1))
		audit.Add("Rate limited by %s, retrying in %dms (attempt %d/%d)", info.Provider, delay.Milliseconds(), attempt, g.opts.MaxRetries)
		g.opts.Logger.Warn("gateway.retry", "provider", info.Provider, "attempt", attempt, "delay_ms", delay.Milliseconds())
		g.opts.Metrics.ModelRetry(info.Provider)

		if sErr := g.opts.Sleep(ctx, delay); sErr != nil {
			return Response{}, sErr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
