package mcp

import (
	"context"
	"time"
)

// Probe reports whether a session can be opened against cfg.Endpoint. It is a
// diagnostic and never part of request handling.
func Probe(ctx context.Context, cfg Config) bool {
	cfg.withDefaults()
	if cfg.Timeout > 10*time.Second {
		cfg.Timeout = 10 * time.Second
	}

	c, err := Dial(ctx, cfg)
	if err != nil {
		cfg.Logger.Warn("mcp.probe.failed", "endpoint", cfg.Endpoint, "error", err.Error())
		return false
	}
	if err := c.Close(); err != nil {
		cfg.Logger.Warn("mcp.probe.close_failed", "endpoint", cfg.Endpoint, "error", err.Error())
	}
	return true
}
