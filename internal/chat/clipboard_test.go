package chat

import (
	"errors"
	"testing"
)

type fakeClipboard struct {
	available bool
	written   string
	err       error
}

func (f *fakeClipboard) Available() bool { return f.available }

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = text
	return nil
}

func TestCopyLastCode(t *testing.T) {
	conv := NewConversation("c", Options{})
	conv.AddBotText("code for it\n```html\n<a href=\"x\">&</a>\n```")

	cb := &fakeClipboard{available: true}
	got, err := CopyLastCode(conv, cb)
	if err != nil {
		t.Fatalf("CopyLastCode error: %v", err)
	}
	want := "<a href=\"x\">&</a>"
	if got != want || cb.written != want {
		t.Fatalf("copied %q / %q, want verbatim body %q", got, cb.written, want)
	}
}

func TestCopyLastCodeUnavailable(t *testing.T) {
	conv := NewConversation("c", Options{})
	conv.AddBotText("code for it\n```\nx\n```")

	if _, err := CopyLastCode(conv, &fakeClipboard{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := CopyLastCode(conv, nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for nil clipboard, got %v", err)
	}
}

func TestCopyLastCodeFailures(t *testing.T) {
	conv := NewConversation("c", Options{})
	if _, err := CopyLastCode(conv, &fakeClipboard{available: true}); err == nil {
		t.Fatalf("expected error without a code block")
	}

	conv.AddBotText("code for it\n```\nx\n```")
	writeErr := errors.New("denied")
	if _, err := CopyLastCode(conv, &fakeClipboard{available: true, err: writeErr}); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
}
