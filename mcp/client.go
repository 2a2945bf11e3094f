// Package mcp implements the execution transport over the Model Context
// Protocol's streamable HTTP binding, using the official Go SDK. One Client
// is one MCP session.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/logging"
	"github.com/hupe1980/actionmesh/tool"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxListPages = 100

// Config configures a client.
type Config struct {
	Endpoint string
	// Timeout bounds the handshake and each call. Zero means 30s.
	Timeout time.Duration
	// Headers are added to every request (for example Authorization).
	Headers       map[string]string
	HTTPClient    *http.Client
	Logger        logging.Logger
	ClientName    string
	ClientVersion string
}

func (c *Config) withDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = logging.NoOpLogger{}
	}
	if c.ClientName == "" {
		c.ClientName = "actionmesh"
	}
	if c.ClientVersion == "" {
		c.ClientVersion = "0.1.0"
	}
}

// httpClient returns a copy of the configured client that sets cfg.Headers on
// every request.
func (c *Config) httpClient() *http.Client {
	hc := *c.HTTPClient
	if len(c.Headers) > 0 {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = &headerTransport{base: base, headers: c.Headers}
	}
	return &hc
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// ServerInfo is what the server reported during initialize.
type ServerInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
}

// Client is one MCP session. It satisfies tool.Transport.
type Client struct {
	cfg     Config
	session *sdk.ClientSession
	server  ServerInfo

	mu   sync.Mutex
	defs map[string]map[string]any
}

var _ tool.Transport = (*Client)(nil)

// Dial opens a session. Failures are returned as *core.TransportConnectError.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg.withDefaults()
	if cfg.Endpoint == "" {
		return nil, &core.TransportConnectError{Err: errors.New("no endpoint configured")}
	}

	client := sdk.NewClient(&sdk.Implementation{Name: cfg.ClientName, Version: cfg.ClientVersion}, nil)
	transport := &sdk.StreamableClientTransport{
		Endpoint:   cfg.Endpoint,
		HTTPClient: cfg.httpClient(),
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	session, err := client.Connect(connectCtx, transport, nil)
	if err != nil {
		return nil, &core.TransportConnectError{Endpoint: cfg.Endpoint, Err: err}
	}

	c := &Client{cfg: cfg, session: session}
	if res := session.InitializeResult(); res != nil {
		c.server.ProtocolVersion = res.ProtocolVersion
		if res.ServerInfo != nil {
			c.server.Name = res.ServerInfo.Name
			c.server.Version = res.ServerInfo.Version
		}
	}

	cfg.Logger.Debug("mcp.session.opened",
		"endpoint", cfg.Endpoint,
		"session_id", session.ID(),
		"server", c.server.Name,
		"protocol_version", c.server.ProtocolVersion,
	)
	return c, nil
}

// NewConnector returns a tool.Connector dialing a fresh session per call.
func NewConnector(cfg Config) tool.Connector {
	return func(ctx context.Context) (tool.Transport, error) {
		return Dial(ctx, cfg)
	}
}

// SessionID returns the id assigned by the server, if any.
func (c *Client) SessionID() string { return c.session.ID() }

// Server returns the server identity reported during initialize.
func (c *Client) Server() ServerInfo { return c.server }

// ListTools implements tool.Transport. It follows the cursor until the
// listing is complete and remembers each definition for GetToolSchema.
func (c *Client) ListTools(ctx context.Context) ([]tool.Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		infos  []tool.Info
		defs   = map[string]map[string]any{}
		params = &sdk.ListToolsParams{}
	)
	for page := 0; page < maxListPages; page++ {
		res, err := c.session.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("tools/list: %w", err)
		}
		for _, t := range res.Tools {
			if t == nil || t.Name == "" {
				continue
			}
			schema, err := toMap(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("tools/list: schema of %s: %w", t.Name, err)
			}
			infos = append(infos, tool.Info{Name: t.Name, Description: t.Description, InputSchema: schema})

			def := map[string]any{"name": t.Name, "description": t.Description}
			if schema != nil {
				def["inputSchema"] = schema
			}
			defs[t.Name] = def
		}
		if res.NextCursor == "" {
			break
		}
		params = &sdk.ListToolsParams{Cursor: res.NextCursor}
	}

	c.mu.Lock()
	c.defs = defs
	c.mu.Unlock()
	return infos, nil
}

// GetToolSchema implements tool.Transport. MCP has no per-tool describe
// method; the definition comes from the listing, which is fetched on demand.
func (c *Client) GetToolSchema(ctx context.Context, name string) (map[string]any, error) {
	c.mu.Lock()
	loaded := c.defs != nil
	c.mu.Unlock()
	if !loaded {
		if _, err := c.ListTools(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("tool %q is not listed by the server", name)
	}
	return def, nil
}

// CallTool implements tool.Transport. The result fields are passed through
// as the payload; isError becomes ExecutionResult.IsError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (core.ExecutionResult, error) {
	if args == nil {
		args = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	res, err := c.session.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return core.ExecutionResult{}, fmt.Errorf("tools/call %s: %w", name, err)
	}

	payload, err := toMap(res)
	if err != nil {
		return core.ExecutionResult{}, fmt.Errorf("tools/call %s: decode result: %w", name, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	delete(payload, "isError")
	return core.ExecutionResult{IsError: res.IsError, Payload: payload}, nil
}

// Close terminates the session; the SDK sends the HTTP DELETE.
func (c *Client) Close() error {
	id := c.session.ID()
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	c.cfg.Logger.Debug("mcp.session.closed", "session_id", id)
	return nil
}

// toMap converts an SDK value (schema or result) into its JSON object form.
func toMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
