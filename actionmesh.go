// Package actionmesh provides a high-level façade over the orchestration
// pipeline: a rate-limit aware model gateway, a tool transport connector and
// the runner that plans, executes and summarizes requests. Most applications
// interact with this package by:
//  1. Creating an ActionMesh via New() with a model provider and a connector
//  2. Calling Run for stateless requests, or Chat to let a HistoryStore keep
//     the conversation between turns
package actionmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/metrics"
	"github.com/hupe1980/actionmesh/model"
	"github.com/hupe1980/actionmesh/runner"
	"github.com/hupe1980/actionmesh/session"
	"github.com/hupe1980/actionmesh/tool"
)

// Options configures the ActionMesh instance.
type Options struct {
	// MaxRetries and BaseDelay configure the gateway's rate-limit backoff.
	MaxRetries int
	BaseDelay  time.Duration

	// Runner carries orchestration overrides (token limits, history window,
	// tool description caps, fallback plan). Logger and Metrics are taken
	// from this struct instead.
	Runner runner.Options

	// HistoryStore keeps conversations for Chat (defaults to in-memory).
	HistoryStore core.HistoryStore

	// Logger (defaults to NoOp logger if nil)
	Logger  logging.Logger
	Metrics *metrics.Recorder

	// Now stamps chat messages; tests pin it.
	Now func() time.Time
}

// ActionMesh is the high-level façade aggregating gateway, runner and history.
type ActionMesh struct {
	gateway *model.Gateway
	runner  *runner.Runner
	history core.HistoryStore
	logger  logging.Logger
	now     func() time.Time
}

// New creates an ActionMesh. provider is wrapped in a retrying gateway and
// connector is invoked once per request.
func New(provider model.Provider, connector tool.Connector, optFns ...func(o *Options)) *ActionMesh {
	opts := Options{
		MaxRetries:   3,
		BaseDelay:    500 * time.Millisecond,
		Runner:       runner.DefaultOptions(),
		HistoryStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
		Now:          time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.HistoryStore == nil {
		opts.HistoryStore = session.NewInMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gw := model.NewGateway(provider, func(o *model.GatewayOptions) {
		o.MaxRetries = opts.MaxRetries
		o.BaseDelay = opts.BaseDelay
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	runnerOpts := opts.Runner
	runnerOpts.Logger = opts.Logger
	runnerOpts.Metrics = opts.Metrics

	return &ActionMesh{
		gateway: gw,
		runner:  runner.New(gw, connector, func(o *runner.Options) { *o = runnerOpts }),
		history: opts.HistoryStore,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Run executes one stateless request; the caller supplies any history.
func (m *ActionMesh) Run(ctx context.Context, req runner.Request) *runner.Outcome {
	return m.runner.Run(ctx, req)
}

// Chat runs prompt within the conversation stored under conversationID and
// records the turn. Failed turns are recorded with the error message as the
// assistant reply so the next turn has context.
func (m *ActionMesh) Chat(ctx context.Context, conversationID, prompt, pageID string) (*runner.Outcome, error) {
	history, err := m.history.History(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	req := runner.Request{Prompt: prompt, ConversationHistory: history}
	if pageID != "" {
		req.PageContext = &runner.PageContext{PageInfo: &runner.PageInfo{ID: pageID}}
	}

	asked := m.now()
	out := m.runner.Run(ctx, req)

	reply := out.Response
	if !out.Success {
		reply = "Error: " + out.Error
	}
	if err := m.history.Append(conversationID,
		core.ConversationMessage{Role: core.RoleUser, Content: prompt, Timestamp: asked},
		core.ConversationMessage{Role: core.RoleAssistant, Content: reply, Timestamp: m.now()},
	); err != nil {
		m.logger.Warn("actionmesh.history.append_failed", "conversation", conversationID, "error", err.Error())
		return out, fmt.Errorf("save history: %w", err)
	}
	return out, nil
}

// ResetConversation forgets the conversation stored under conversationID.
func (m *ActionMesh) ResetConversation(conversationID string) error {
	return m.history.Reset(conversationID)
}

// ModelInfo returns the metadata of the configured model provider.
func (m *ActionMesh) ModelInfo() model.Info { return m.gateway.Info() }
