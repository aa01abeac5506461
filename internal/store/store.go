// Package store persists the single theme preference.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"chatwidget/internal/model"
)

// ErrInvalidTheme is returned for values other than light-mode and dark-mode.
var ErrInvalidTheme = errors.New("invalid theme")

// prefsFile is the on-disk shape of the preference file.
type prefsFile struct {
	Theme model.Theme `toml:"theme"`
}

// ThemeStore reads and writes the theme flag in a TOML file.
type ThemeStore struct {
	path     string
	fallback model.Theme
	mu       sync.Mutex
}

// NewThemeStore returns a store at path. Until a theme is saved, Load
// returns light-mode.
func NewThemeStore(path string) *ThemeStore {
	return &ThemeStore{path: path, fallback: model.ThemeLight}
}

// Path returns the preference file location.
func (s *ThemeStore) Path() string { return s.path }

// Load returns the saved theme.
func (s *ThemeStore) Load() (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save validates and writes theme.
func (s *ThemeStore) Save(theme model.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(theme)
}

// Toggle flips the saved theme and returns the new value.
func (s *ThemeStore) Toggle() (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := s.save(next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *ThemeStore) load() (model.Theme, error) {
	if s.path == "" {
		return "", errors.New("preference path is required")
	}

	var prefs prefsFile
	if _, err := toml.DecodeFile(s.path, &prefs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.fallback, nil
		}
		return "", fmt.Errorf("read preferences %s: %w", s.path, err)
	}
	if prefs.Theme == "" {
		return s.fallback, nil
	}
	if !validTheme(prefs.Theme) {
		return "", fmt.Errorf("%w %q in %s", ErrInvalidTheme, prefs.Theme, s.path)
	}
	return prefs.Theme, nil
}

func (s *ThemeStore) save(theme model.Theme) error {
	if !validTheme(theme) {
		return fmt.Errorf("%w %q", ErrInvalidTheme, theme)
	}
	if s.path == "" {
		return errors.New("preference path is required")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(prefsFile{Theme: theme}); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

func validTheme(theme model.Theme) bool {
	return theme == model.ThemeLight || theme == model.ThemeDark
}
