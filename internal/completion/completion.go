// Package completion defines the upstream language-model collaborator and a
// registry of providers. Provider packages register themselves from init, so
// binaries pick providers with blank imports.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Completer sends one prompt upstream and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls fn.
func (fn CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return fn(ctx, prompt)
}

// Config selects and configures a provider. APIKey is resolved on the server
// and never sent to browser clients.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	// HTTPClient overrides the transport; nil means a client with Timeout.
	HTTPClient *http.Client
}

// Client returns cfg.HTTPClient or a new client bounded by cfg.Timeout.
func (cfg Config) Client() *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: cfg.Timeout}
}

var (
	// ErrEmptyReply is returned when the upstream answered without text.
	ErrEmptyReply = errors.New("completion returned no text")
	// ErrMissingAPIKey is returned by providers that need a credential.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrEmptyPrompt is returned before any network call for blank prompts.
	ErrEmptyPrompt = errors.New("prompt is empty")
)

// StatusError reports a non-success HTTP response from the upstream.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream request failed with status %d", e.Code)
	}
	return fmt.Sprintf("upstream request failed with status %d: %s", e.Code, e.Body)
}

// Factory builds a Completer from config.
type Factory func(cfg Config) (Completer, error)

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

// Register makes a provider available under name. Registering a name twice
// replaces the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[strings.ToLower(name)] = factory
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	registryMu.RLock()
	factory, ok := factories[strings.ToLower(cfg.Provider)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown completion provider %q (registered: %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
	c, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s completer: %w", cfg.Provider, err)
	}
	return c, nil
}

// CheckPrompt trims prompt and rejects blank input.
func CheckPrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return prompt, nil
}
