package chat

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when an optional capability is missing.
var ErrUnavailable = errors.New("capability unavailable")

// Clipboard writes text for the user to paste elsewhere.
type Clipboard interface {
	Available() bool
	WriteText(text string) error
}

// SystemClipboard uses the operating system clipboard.
type SystemClipboard struct{}

// Available reports whether a clipboard utility was found.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}

// WriteText copies text verbatim.
func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: %w", ErrUnavailable)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// CopyLastCode copies the body of the most recent code block in conv.
func CopyLastCode(conv *Conversation, cb Clipboard) (string, error) {
	code, ok := conv.LastCode()
	if !ok {
		return "", errors.New("no code block to copy")
	}
	if cb == nil || !cb.Available() {
		return "", fmt.Errorf("clipboard: %w", ErrUnavailable)
	}
	if err := cb.WriteText(code.Body); err != nil {
		return "", err
	}
	return code.Body, nil
}
