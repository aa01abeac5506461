package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatwidget/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		highlight bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the same-origin completion relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			completer, err := newCompleter(cfg)
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				Config:    cfg.Server,
				Completer: completer,
				Formatter: newFormatter(cfg, highlight),
				Themes:    newThemeStore(cfg),
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("starting relay",
				zap.String("provider", cfg.Completion.Provider),
				zap.String("model", cfg.Completion.Model),
				zap.Strings("allowed_origins", cfg.Server.AllowedOrigins))
			return srv.ListenAndServe(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	flags.BoolVar(&highlight, "highlight", false, "syntax-highlight code blocks with CSS classes")

	return cmd
}

