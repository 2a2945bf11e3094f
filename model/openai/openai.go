// Package openai provides a model.Provider using the OpenAI Chat Completions
// API. It adapts the normalized model.Request into the SDK's message format and
// maps the "length" finish reason onto model.StopReasonMaxTokens.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI provider.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Provider wraps the OpenAI Chat Completions API behind model.Provider.
type Provider struct {
	client *openai.Client
	opts   Options
}

// New creates a provider using the official client with SDK retries disabled.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{Model: openai.ChatModelGPT4oMini}
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

	client := openai.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// Send implements model.Provider.
func (p *Provider) Send(ctx context.Context, req model.Request) (model.Response, error) {
	modelName := p.opts.Model
	if req.Model != "" {
		modelName = req.Model
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               modelName,
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return model.Response{}, fmt.Errorf("openai: no choices returned")
	}

	ch0 := resp.Choices[0]
	return model.Response{
		Text:       ch0.Message.Content,
		StopReason: normalizeFinishReason(ch0.FinishReason),
		Model:      resp.Model,
	}, nil
}

// buildMessages converts normalized messages into OpenAI chat messages with the
// system prompt first.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	normalized := model.NormalizeMessages(req.Messages)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(normalized)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range normalized {
		if m.Role == core.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "length":
		return model.StopReasonMaxTokens
	case "stop", "":
		return model.StopReasonEndTurn
	default:
		return reason
	}
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if apiErr.StatusCode == http.StatusTooManyRequests || strings.Contains(msg, "rate_limit") {
			return &core.TransientUpstreamError{
				Provider:   "openai",
				StatusCode: apiErr.StatusCode,
				Message:    msg,
				Err:        err,
			}
		}
	}
	return fmt.Errorf("openai api error: %w", err)
}

// Info returns metadata describing this provider.
func (p *Provider) Info() model.Info {
	return model.Info{Name: p.opts.Model, Provider: "openai"}
}
