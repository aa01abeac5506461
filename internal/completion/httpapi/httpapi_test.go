package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatwidget/internal/completion"
)

func TestComplete(t *testing.T) {
	var (
		got  Request
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(Response{Text: "hello"})
	}))
	defer srv.Close()

	c, err := completion.New(completion.Config{Provider: "http", Endpoint: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), " hi ")
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	require.Equal(t, "hi", got.Prompt)
	require.Equal(t, "Bearer k", auth)
}

func TestCompleteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(completion.Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hi")
	var status *completion.StatusError
	require.True(t, errors.As(err, &status), "got %v", err)
	require.Equal(t, http.StatusTooManyRequests, status.Code)
	require.Equal(t, "quota exceeded", status.Body)
}

func TestCompleteEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"  "}`))
	}))
	defer srv.Close()

	c, err := New(completion.Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hi")
	require.ErrorIs(t, err, completion.ErrEmptyReply)
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(completion.Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hi")
	require.Error(t, err)
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New(completion.Config{})
	require.Error(t, err)
}
