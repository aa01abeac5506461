// Package config loads chatwidget settings from TOML with environment
// overrides.
//
// Configuration file location (first match wins):
//   - the path given with --config
//   - $CHATWIDGET_CONFIG
//   - ~/.chatwidget/config.toml
//   - built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"chatwidget/internal/format"
)

// Config is the complete chatwidget configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Completion CompletionConfig `toml:"completion"`
	Format     FormatConfig     `toml:"format"`
	Prefs      PrefsConfig      `toml:"prefs"`
	Log        LogConfig        `toml:"log"`
	Voice      VoiceConfig      `toml:"voice"`
}

// ServerConfig configures the relay HTTP server.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// RateLimit is the sustained requests per second allowed per client.
	// Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
	// SerializeConversations makes replies in one conversation land in
	// submission order.
	SerializeConversations bool     `toml:"serialize_conversations"`
	MaxConversations       int      `toml:"max_conversations"`
	HistorySize            int      `toml:"history_size"`
	MaxPromptBytes         int64    `toml:"max_prompt_bytes"`
	ShutdownTimeout        Duration `toml:"shutdown_timeout"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `toml:"trust_proxy_headers"`
}

// CompletionConfig selects the upstream provider. The credential itself is
// read from the environment variable named by APIKeyEnv.
type CompletionConfig struct {
	Provider  string   `toml:"provider"`
	Model     string   `toml:"model"`
	Endpoint  string   `toml:"endpoint"`
	APIKeyEnv string   `toml:"api_key_env"`
	Timeout   Duration `toml:"timeout"`
}

// FormatConfig overrides the formatter vocabularies.
type FormatConfig struct {
	CodeTriggers       []string `toml:"code_triggers"`
	ComparisonTriggers []string `toml:"comparison_triggers"`
	EmphasisWords      []string `toml:"emphasis_words"`
	Highlight          bool     `toml:"highlight"`
	HighlightStyle     string   `toml:"highlight_style"`
}

// PrefsConfig locates the theme preference file.
type PrefsConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// VoiceConfig names an external speech-to-text program whose stdout lines
// are final transcripts. Empty disables voice input.
type VoiceConfig struct {
	Command []string `toml:"command"`
}

// Duration is a time.Duration that decodes from TOML strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	rules := format.DefaultRules()
	return &Config{
		Server: ServerConfig{
			Addr:                   "127.0.0.1:8787",
			AllowedOrigins:         []string{"http://localhost:*", "http://127.0.0.1:*"},
			RateLimit:              2,
			RateBurst:              5,
			SerializeConversations: true,
			MaxConversations:       256,
			HistorySize:            50,
			MaxPromptBytes:         64 * 1024,
			ShutdownTimeout:        Duration{10 * time.Second},
		},
		Completion: CompletionConfig{
			Provider:  "gemini",
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   Duration{60 * time.Second},
		},
		Format: FormatConfig{
			CodeTriggers:       rules.CodeTriggers,
			ComparisonTriggers: rules.ComparisonTriggers,
			EmphasisWords:      rules.EmphasisWords,
			HighlightStyle:     "monokai",
		},
		Prefs: PrefsConfig{
			Path: filepath.Join(home, ".chatwidget", "prefs.toml"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.chatwidget/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatwidget", "config.toml"), nil
}

// Load reads path over the defaults. An empty path resolves through
// $CHATWIDGET_CONFIG and DefaultPath; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("CHATWIDGET_CONFIG"); env != "" {
			path = env
			explicit = true
		} else if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				return cfg, nil
			}
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CHATWIDGET_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATWIDGET_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CHATWIDGET_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CHATWIDGET_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Server.RateLimit = f
		}
	}
	if v := os.Getenv("CHATWIDGET_PROVIDER"); v != "" {
		c.Completion.Provider = v
	}
	if v := os.Getenv("CHATWIDGET_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("CHATWIDGET_ENDPOINT"); v != "" {
		c.Completion.Endpoint = v
	}
	if v := os.Getenv("CHATWIDGET_API_KEY_ENV"); v != "" {
		c.Completion.APIKeyEnv = v
	}
	if v := os.Getenv("CHATWIDGET_PREFS"); v != "" {
		c.Prefs.Path = v
	}
	if v := os.Getenv("CHATWIDGET_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// APIKey returns the credential from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Completion.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Completion.APIKeyEnv)
}

// Rules returns the formatter vocabularies.
func (c *Config) Rules() format.Rules {
	return format.Rules{
		CodeTriggers:       c.Format.CodeTriggers,
		ComparisonTriggers: c.Format.ComparisonTriggers,
		EmphasisWords:      c.Format.EmphasisWords,
	}
}

// FormatOptions returns the formatter options.
func (c *Config) FormatOptions() format.Options {
	return format.Options{
		Rules:          c.Rules(),
		Highlight:      c.Format.Highlight,
		HighlightStyle: c.Format.HighlightStyle,
	}
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []error

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	var errs ValidationErrors
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("server.allowed_origins must list at least one origin"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be >= 0, got %v", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst must be >= 1 when rate limiting, got %d", c.Server.RateBurst))
	}
	if c.Server.MaxConversations < 1 {
		errs = append(errs, fmt.Errorf("server.max_conversations must be >= 1, got %d", c.Server.MaxConversations))
	}
	if c.Server.HistorySize < 2 {
		errs = append(errs, fmt.Errorf("server.history_size must be >= 2, got %d", c.Server.HistorySize))
	}
	if c.Server.MaxPromptBytes < 1 {
		errs = append(errs, fmt.Errorf("server.max_prompt_bytes must be >= 1, got %d", c.Server.MaxPromptBytes))
	}
	if c.Completion.Provider == "" {
		errs = append(errs, errors.New("completion.provider is required"))
	}
	if c.Completion.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("completion.timeout must be positive"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
