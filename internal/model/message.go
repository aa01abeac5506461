package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	// RoleUser marks text typed or spoken by the person chatting.
	RoleUser Role = "user"
	// RoleBot marks greetings, replies and apologies from the assistant.
	RoleBot Role = "bot"
)

// Message is one entry in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Block     Block     `json:"block"`
	Pending   bool      `json:"pending,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Theme is the persisted light/dark preference.
type Theme string

const (
	// ThemeLight is the default appearance.
	ThemeLight Theme = "light-mode"
	// ThemeDark is the dark appearance.
	ThemeDark Theme = "dark-mode"
)

// ParseTheme accepts "light", "dark" or the full class names.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "light-mode":
		return ThemeLight, nil
	case "dark", "dark-mode":
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
