// Package completion wraps the OpenAI chat completion API behind a small
// single-prompt interface. One request, one response: no retry, no streaming.
package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
)

// Completer submits one text prompt and returns the completion text.
// The kind label ("suggest" or "detail") is carried for metrics and error
// context only.
type Completer interface {
	Complete(ctx context.Context, kind, prompt string) (string, error)
}

// Client is the OpenAI-backed Completer.
type Client struct {
	client openai.Client
	model  string
}

// Config holds settings for creating a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional override for OpenAI-compatible providers
}

// NewClient creates a completion client for the configured model.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete submits the prompt and returns the trimmed completion text.
// Transport failures, service errors, and upstream quota rejections all
// surface as *apperrors.CompletionError; the upstream detail is for logs
// only and must never be forwarded to the end user.
func (c *Client) Complete(ctx context.Context, kind, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.NewCompletionError(c.model, kind, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewCompletionError(c.model, kind, errEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperrors.NewCompletionError(c.model, kind, errEmptyResponse)
	}

	return text, nil
}

// errEmptyResponse marks a 2xx completion that carried no usable text.
var errEmptyResponse = errors.New("empty completion response")
