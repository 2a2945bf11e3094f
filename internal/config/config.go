// Package config loads ActionMesh configuration from a file, environment
// variables (prefix ACTIONMESH_, "." replaced by "_") and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "ACTIONMESH"

// Config holds all configuration of the service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	LLM          LLMConfig          `mapstructure:"llm"`
	MCP          MCPConfig          `mapstructure:"mcp"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Validate checks the server settings.
func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return errors.New("server.address is required")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return errors.New("server timeouts cannot be negative")
	}
	return nil
}

// LLMConfig selects and tunes the model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // anthropic or openai
	Model    string `mapstructure:"model"`
	// APIKey may be empty; the provider SDK then reads its own environment
	// variable (ANTHROPIC_API_KEY / OPENAI_API_KEY).
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	MaxRetries       int           `mapstructure:"max_retries"`
	BaseDelay        time.Duration `mapstructure:"base_delay"`
	PlanMaxTokens    int           `mapstructure:"plan_max_tokens"`
	SummaryMaxTokens int           `mapstructure:"summary_max_tokens"`
	Temperature      float64       `mapstructure:"temperature"`
}

// Validate checks the LLM settings.
func (l LLMConfig) Validate() error {
	switch l.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("llm.provider %q is not supported (anthropic, openai, mock)", l.Provider)
	}
	if l.MaxRetries < 0 {
		return errors.New("llm.max_retries cannot be negative")
	}
	if l.BaseDelay <= 0 {
		return errors.New("llm.base_delay must be greater than zero")
	}
	if l.PlanMaxTokens <= 0 || l.SummaryMaxTokens <= 0 {
		return errors.New("llm token limits must be greater than zero")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	return nil
}

// MCPConfig locates the tool execution endpoint.
type MCPConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

// Validate checks the MCP settings.
func (m MCPConfig) Validate() error {
	if !strings.HasPrefix(m.Endpoint, "http://") && !strings.HasPrefix(m.Endpoint, "https://") {
		return fmt.Errorf("mcp.endpoint %q must be an http(s) URL", m.Endpoint)
	}
	if m.Timeout <= 0 {
		return errors.New("mcp.timeout must be greater than zero")
	}
	return nil
}

// OrchestratorConfig tunes prompt construction and the fallback plan.
type OrchestratorConfig struct {
	HistoryLimit        int    `mapstructure:"history_limit"`
	MaxTools            int    `mapstructure:"max_tools"`
	MaxDescriptionChars int    `mapstructure:"max_description_chars"`
	FallbackTool        string `mapstructure:"fallback_tool"`
	FallbackPageParam   string `mapstructure:"fallback_page_param"`
}

// Validate checks the orchestrator settings.
func (o OrchestratorConfig) Validate() error {
	if o.HistoryLimit < 0 {
		return errors.New("orchestrator.history_limit cannot be negative")
	}
	if o.MaxTools <= 0 || o.MaxDescriptionChars <= 0 {
		return errors.New("orchestrator tool description caps must be greater than zero")
	}
	if strings.TrimSpace(o.FallbackTool) == "" {
		return errors.New("orchestrator.fallback_tool is required")
	}
	return nil
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Validate checks the logging settings.
func (l LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is invalid", l.Level)
	}
	switch l.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is invalid (json, text)", l.Format)
	}
	return nil
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate runs every section's validation.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{c.Server, c.LLM, c.MCP, c.Orchestrator, c.Logging} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	v.SetDefault("llm.provider", "anthropic")
	// empty lets each provider apply its own default model
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.base_delay", 500*time.Millisecond)
	v.SetDefault("llm.plan_max_tokens", 4096)
	v.SetDefault("llm.summary_max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("mcp.endpoint", "http://localhost:3000/mcp")
	v.SetDefault("mcp.timeout", 30*time.Second)
	v.SetDefault("mcp.headers", map[string]string{})

	v.SetDefault("orchestrator.history_limit", 10)
	v.SetDefault("orchestrator.max_tools", 20)
	v.SetDefault("orchestrator.max_description_chars", 2000)
	v.SetDefault("orchestrator.fallback_tool", "content_items.list")
	v.SetDefault("orchestrator.fallback_page_param", "pageId")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration. With an empty path an optional "actionmesh"
// config file is searched in ./ and ./config; a missing file is not an error.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("actionmesh")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
