// Package main provides the chatwidget CLI: the relay server plus terminal
// tools for formatting and chatting.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatwidget/internal/completion"
	_ "chatwidget/internal/completion/gemini"
	_ "chatwidget/internal/completion/httpapi"
	_ "chatwidget/internal/completion/openaichat"
	"chatwidget/internal/config"
	"chatwidget/internal/format"
	"chatwidget/internal/logging"
	"chatwidget/internal/store"
)

var version = "dev"

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
	// appConfig is loaded once by the root pre-run hook.
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "chatwidget",
	Short:         "Chat widget relay and response formatter",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(level, cfg.Log.Development)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (env: CHATWIDGET_CONFIG, default: ~/.chatwidget/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newProvidersCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chatwidget: %v\n", err)
		os.Exit(1)
	}
}

// currentConfig returns the config loaded by the root command, loading it
// when a subcommand runs on its own.
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return loadConfig()
}

// loadConfig reads the config file, applies CHATWIDGET_* overrides and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFormatter(cfg *config.Config, highlight bool) *format.Formatter {
	opts := cfg.FormatOptions()
	opts.Highlight = opts.Highlight || highlight
	return format.New(opts)
}

func newCompleter(cfg *config.Config) (completion.Completer, error) {
	return completion.New(completion.Config{
		Provider: cfg.Completion.Provider,
		Model:    cfg.Completion.Model,
		APIKey:   cfg.APIKey(),
		Endpoint: cfg.Completion.Endpoint,
		Timeout:  cfg.Completion.Timeout.Duration,
	})
}

func newThemeStore(cfg *config.Config) *store.ThemeStore {
	return store.NewThemeStore(cfg.Prefs.Path)
}

type input struct {
	source string
	text   string
}

// readInputs returns the contents of each path, or stdin when paths is
// empty or "-".
func readInputs(stdin io.Reader, paths []string) ([]input, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		if path == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			inputs = append(inputs, input{source: "stdin", text: trimInput(data)})
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, input{source: filepath.Base(path), text: trimInput(data)})
	}
	return inputs, nil
}

// trimInput drops the trailing newlines editors and shells append.
func trimInput(data []byte) string {
	return strings.TrimRight(string(data), "\r\n")
}

func outFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
