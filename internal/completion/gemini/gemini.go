// Package gemini implements the completion provider backed by Google's
// Gemini API through google.golang.org/genai.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"chatwidget/internal/completion"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gemini-2.0-flash"

func init() {
	completion.Register("gemini", func(cfg completion.Config) (completion.Completer, error) {
		return New(cfg)
	})
}

// Client generates replies with Models.GenerateContent.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini client. cfg.Endpoint overrides the API base URL.
func New(cfg completion.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, completion.ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.Client(),
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user turn.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt, err := completion.CheckPrompt(prompt)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", completion.ErrEmptyReply
	}
	return text, nil
}
