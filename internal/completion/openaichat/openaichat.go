// Package openaichat implements the completion provider for OpenAI-compatible
// chat completion endpoints.
package openaichat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chatwidget/internal/completion"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gpt-4o-mini"

func init() {
	completion.Register("openai", func(cfg completion.Config) (completion.Completer, error) {
		return New(cfg)
	})
}

// Client sends single-turn chat completion requests.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI client. cfg.Endpoint overrides the base URL so any
// compatible server can be used. Retries are disabled: a failed request is
// reported to the user once.
func New(cfg completion.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, completion.ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(cfg.Client()),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &Client{client: openai.NewClient(opts...), model: model}, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt, err := completion.CheckPrompt(prompt)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", completion.ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
