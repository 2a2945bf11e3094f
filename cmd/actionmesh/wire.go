package main

import (
	"context"
	"fmt"
	"io"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/actionmesh"
	"github.com/hupe1980/actionmesh/internal/config"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/mcp"
	"github.com/hupe1980/actionmesh/metrics"
	"github.com/hupe1980/actionmesh/model"
	"github.com/hupe1980/actionmesh/model/anthropic"
	"github.com/hupe1980/actionmesh/model/openai"
	"github.com/hupe1980/actionmesh/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg      *config.Config
	logger   *logging.ScopedLogger
	registry *prometheus.Registry
	mesh     *actionmesh.ActionMesh
	mcp      mcp.Config
}

func newApp(cfgPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Logging.Format,
		Output:    logOut,
		Component: "actionmesh",
	})

	var (
		registry *prometheus.Registry
		recorder *metrics.Recorder
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewRecorder(registry)
	}

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	mcpCfg := mcp.Config{
		Endpoint: cfg.MCP.Endpoint,
		Timeout:  cfg.MCP.Timeout,
		Headers:  cfg.MCP.Headers,
		Logger:   logger.WithComponent("mcp"),
	}

	runnerOpts := runner.DefaultOptions()
	runnerOpts.Model = cfg.LLM.Model
	runnerOpts.PlanMaxTokens = cfg.LLM.PlanMaxTokens
	runnerOpts.SummaryMaxTokens = cfg.LLM.SummaryMaxTokens
	runnerOpts.Temperature = cfg.LLM.Temperature
	runnerOpts.HistoryLimit = cfg.Orchestrator.HistoryLimit
	runnerOpts.MaxTools = cfg.Orchestrator.MaxTools
	runnerOpts.MaxDescriptionChars = cfg.Orchestrator.MaxDescriptionChars
	runnerOpts.Fallback.Tool = cfg.Orchestrator.FallbackTool
	runnerOpts.Fallback.PageParam = cfg.Orchestrator.FallbackPageParam

	mesh := actionmesh.New(provider, mcp.NewConnector(mcpCfg), func(o *actionmesh.Options) {
		o.MaxRetries = cfg.LLM.MaxRetries
		o.BaseDelay = cfg.LLM.BaseDelay
		o.Runner = runnerOpts
		o.Logger = logger.WithComponent("runner")
		o.Metrics = recorder
	})

	return &app{cfg: cfg, logger: logger, registry: registry, mesh: mesh, mcp: mcpCfg}, nil
}

func buildProvider(cfg config.LLMConfig) (model.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = sdk.Model(cfg.Model)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "mock":
		name := cfg.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMockProvider(name), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func (a *app) probe(ctx context.Context) bool {
	return mcp.Probe(ctx, a.mcp)
}
