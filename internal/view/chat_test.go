package view

import (
	"strings"
	"testing"

	"chatwidget/internal/model"
)

func TestChatBubbleAlignment(t *testing.T) {
	user := renderChatBubble(model.Message{Role: model.RoleUser, Text: "hi"}, 60, 2, false)
	bot := renderChatBubble(model.Message{Role: model.RoleBot, Text: "hello", Block: model.Block{Kind: model.KindProse}}, 60, 2, false)

	userPad := len(user[0]) - len(strings.TrimLeft(user[0], " "))
	botPad := len(bot[0]) - len(strings.TrimLeft(bot[0], " "))
	if botPad != 2 {
		t.Fatalf("bot bubble should be left aligned, pad=%d", botPad)
	}
	if userPad <= botPad {
		t.Fatalf("user bubble should be right aligned, pad=%d", userPad)
	}
}

func TestChatBubbleWrapsWideRunes(t *testing.T) {
	msg := model.Message{Role: model.RoleUser, Text: strings.Repeat("界", 40)}
	lines := renderChatBubble(msg, 40, 2, false)
	for _, line := range lines {
		if w := visibleWidth(line); w > 40 {
			t.Fatalf("line exceeds width (%d): %q", w, line)
		}
	}
}

func TestChatHeaderFailedColor(t *testing.T) {
	msg := model.Message{Role: model.RoleBot, Failed: true, Text: "Sorry"}
	lines := renderChatBubble(msg, 60, 2, true)
	if !strings.Contains(lines[1], ansiFailed) {
		t.Fatalf("failed message header should use the failure color: %q", lines[1])
	}
}

func TestTruncateToWidthKeepsANSI(t *testing.T) {
	text := colorize(true, ansiBot, "abcdef")
	got := truncateToWidth(text, 3)
	if visibleWidth(got) != 3 || !strings.HasPrefix(got, ansiBot) {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("abcdefgh", 3)
	if len(got) != 3 || got[0] != "abc" || got[2] != "gh" {
		t.Fatalf("wrapText = %#v", got)
	}
	if got := wrapText("   ", 3); len(got) != 1 || got[0] != "" {
		t.Fatalf("blank wrap = %#v", got)
	}
}
