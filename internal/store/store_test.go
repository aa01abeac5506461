package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatwidget/internal/model"
)

func TestThemeStoreDefaultsToLight(t *testing.T) {
	s := NewThemeStore(filepath.Join(t.TempDir(), "prefs.toml"))
	theme, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if theme != model.ThemeLight {
		t.Fatalf("expected light-mode, got %s", theme)
	}
}

func TestThemeStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	s := NewThemeStore(path)

	if err := s.Save(model.ThemeDark); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read prefs: %v", err)
	}
	if !strings.Contains(string(data), `theme = "dark-mode"`) {
		t.Fatalf("unexpected file content: %s", data)
	}

	theme, err := NewThemeStore(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if theme != model.ThemeDark {
		t.Fatalf("expected dark-mode, got %s", theme)
	}
}

func TestThemeStoreToggle(t *testing.T) {
	s := NewThemeStore(filepath.Join(t.TempDir(), "prefs.toml"))
	for _, want := range []model.Theme{model.ThemeDark, model.ThemeLight, model.ThemeDark} {
		got, err := s.Toggle()
		if err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestThemeStoreRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	s := NewThemeStore(path)
	if err := s.Save(model.Theme("sepia")); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}

	if err := os.WriteFile(path, []byte(`theme = "sepia"`), 0o600); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme on load, got %v", err)
	}
}
