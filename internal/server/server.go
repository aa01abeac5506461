// Package server is the same-origin relay in front of the completion
// provider. The browser widget talks only to this server; the upstream
// credential stays here.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"chatwidget/internal/chat"
	"chatwidget/internal/completion"
	"chatwidget/internal/config"
	"chatwidget/internal/format"
	"chatwidget/internal/store"
)

// ConversationHeader carries the conversation id of /api/chat requests.
const ConversationHeader = "X-Conversation-Id"

// Options configures a Server.
type Options struct {
	Config    config.ServerConfig
	Completer completion.Completer
	Formatter *format.Formatter
	// Themes is optional; without it the theme endpoints are not mounted.
	Themes *store.ThemeStore
	Logger *zap.Logger
}

// Server routes the relay API.
type Server struct {
	router    *chi.Mux
	cfg       config.ServerConfig
	completer completion.Completer
	formatter *format.Formatter
	themes    *store.ThemeStore
	logger    *zap.Logger
	registry  *chat.Registry
	limiter   *clientLimiter
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Completer == nil {
		return nil, errors.New("server requires a completer")
	}
	if len(opts.Config.AllowedOrigins) == 0 {
		return nil, errors.New("server requires at least one allowed origin")
	}
	if opts.Formatter == nil {
		opts.Formatter = format.New(format.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config.MaxPromptBytes <= 0 {
		opts.Config.MaxPromptBytes = 64 * 1024
	}
	if opts.Config.MaxConversations <= 0 {
		opts.Config.MaxConversations = 256
	}

	s := &Server{
		router:    chi.NewRouter(),
		cfg:       opts.Config,
		completer: opts.Completer,
		formatter: opts.Formatter,
		themes:    opts.Themes,
		logger:    opts.Logger,
	}
	s.registry = chat.NewRegistry(opts.Config.MaxConversations, func(id string) *chat.Conversation {
		return chat.NewConversation(id, chat.Options{
			Completer:   s.completer,
			Formatter:   s.formatter,
			Serialize:   s.cfg.SerializeConversations,
			HistorySize: s.cfg.HistorySize,
			Logger:      s.logger,
		})
	})
	if opts.Config.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.Config.RateLimit, opts.Config.RateBurst)
	}

	if opts.Config.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.Config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", ConversationHeader},
		ExposedHeaders: []string{ConversationHeader},
		MaxAge:         300,
	}))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/highlight.css", s.handleHighlightCSS)
	s.router.Post("/api/format", s.handleFormat)

	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Post("/api/complete", s.handleComplete)
		r.Post("/api/chat", s.handleChat)
	})

	if s.themes != nil {
		s.router.Get("/api/theme", s.handleGetTheme)
		s.router.Put("/api/theme", s.handlePutTheme)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("relay shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return nil
}
