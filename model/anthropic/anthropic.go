// Package anthropic provides a model.Provider for the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/model"
)

// DefaultModel is used when neither Options nor the request name a model.
const DefaultModel = anthropic.ModelClaude3_5Sonnet20241022

// Options configures the Anthropic provider (model id, API key, base URL).
// Extend via functional options to preserve stability.
type Options struct {
	Model   anthropic.Model
	APIKey  string
	BaseURL string
	// HTTPClient overrides the transport (tests inject a fake RoundTripper).
	HTTPClient *http.Client
}

// Provider wraps the Anthropic Messages API behind model.Provider.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates a provider using the official client. The SDK's built-in retries
// are disabled: the model gateway owns the retry policy.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{Model: DefaultModel}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewFromClient creates a provider from an existing client. The caller is
// responsible for disabling SDK retries on it.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{Model: DefaultModel}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Send implements model.Provider.
func (p *Provider) Send(ctx context.Context, req model.Request) (model.Response, error) {
	modelName := p.opts.Model
	if req.Model != "" {
		modelName = anthropic.Model(req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:       modelName,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, classify(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return model.Response{
		Text:       text.String(),
		StopReason: string(resp.StopReason),
		Model:      string(resp.Model),
	}, nil
}

// buildMessages converts normalized messages to the Anthropic message format.
func buildMessages(msgs []model.Message) []anthropic.MessageParam {
	normalized := model.NormalizeMessages(msgs)
	messages := make([]anthropic.MessageParam, 0, len(normalized))
	for _, m := range normalized {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == core.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}

// classify turns HTTP 429 and rate_limit_error bodies into
// *core.TransientUpstreamError; everything else is wrapped as-is.
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if apiErr.StatusCode == http.StatusTooManyRequests || strings.Contains(msg, "rate_limit_error") {
			return &core.TransientUpstreamError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    msg,
				Err:        err,
			}
		}
	}
	return fmt.Errorf("anthropic api error: %w", err)
}

// Info returns metadata describing this provider.
func (p *Provider) Info() model.Info {
	return model.Info{Name: string(p.opts.Model), Provider: "anthropic"}
}
