// Package httpapi implements the completion provider for a plain JSON
// endpoint that accepts {"prompt": ...} and answers {"text": ...}. The relay
// server's /api/complete route speaks this protocol.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chatwidget/internal/completion"
)

// MaxResponseSize bounds the upstream body that is read.
const MaxResponseSize = 10 * 1024 * 1024

// Request is the body posted upstream.
type Request struct {
	Prompt string `json:"prompt"`
}

// Response is the body expected back.
type Response struct {
	Text string `json:"text"`
}

func init() {
	completion.Register("http", func(cfg completion.Config) (completion.Completer, error) {
		return New(cfg)
	})
}

// Client posts prompts to Endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New creates a client. An APIKey, when set, is sent as a bearer token.
func New(cfg completion.Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	return &Client{endpoint: cfg.Endpoint, apiKey: cfg.APIKey, http: cfg.Client()}, nil
}

// Complete posts prompt and returns the text field of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt, err := completion.CheckPrompt(prompt)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &completion.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", completion.ErrEmptyReply
	}
	return out.Text, nil
}
