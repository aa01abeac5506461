package completion

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	Register("Echo-Test", func(cfg Config) (Completer, error) {
		return CompleterFunc(func(_ context.Context, prompt string) (string, error) {
			return cfg.Model + ":" + prompt, nil
		}), nil
	})

	c, err := New(Config{Provider: "echo-test", Model: "m"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	got, err := c.Complete(context.Background(), "hi")
	if err != nil || got != "m:hi" {
		t.Fatalf("unexpected completion %q, %v", got, err)
	}

	found := false
	for _, name := range Providers() {
		if name == "echo-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registered provider missing from %v", Providers())
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "nope"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewWrapsFactoryError(t *testing.T) {
	Register("broken-test", func(Config) (Completer, error) { return nil, ErrMissingAPIKey })
	_, err := New(Config{Provider: "broken-test"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCheckPrompt(t *testing.T) {
	if _, err := CheckPrompt("  \n"); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if got, err := CheckPrompt(" hi "); err != nil || got != "hi" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}

func TestStatusError(t *testing.T) {
	err := error(&StatusError{Code: 503, Body: "busy"})
	var status *StatusError
	if !errors.As(err, &status) || status.Code != 503 {
		t.Fatalf("errors.As failed for %v", err)
	}
	if err.Error() != "upstream request failed with status 503: busy" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
