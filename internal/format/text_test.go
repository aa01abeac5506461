package format

import (
	"strings"
	"testing"
)

func TestRenderTextLinesCode(t *testing.T) {
	raw := "code for it:\n```go\na := 1\nb := 2\n```"
	lines := RenderTextLines(raw, newTestFormatter().Format(raw), 80)
	if len(lines) != 3 || lines[0] != "[GO]" || lines[2] != "b := 2" {
		t.Fatalf("unexpected code lines: %#v", lines)
	}
}

func TestRenderTextLinesTable(t *testing.T) {
	raw := "compare\n| Name | Kind |\n|---|---|\n| go | lang |"
	lines := RenderTextLines(raw, newTestFormatter().Format(raw), 80)
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "lang") {
		t.Fatalf("table text missing content:\n%s", out)
	}
	if strings.Contains(out, "---") {
		t.Fatalf("alignment row rendered:\n%s", out)
	}
}

func TestRenderTextLinesProseWraps(t *testing.T) {
	raw := "**one** two three four five six\n\nseven"
	lines := RenderTextLines(raw, newTestFormatter().Format(raw), 10)
	if len(lines) < 4 {
		t.Fatalf("expected wrapped lines, got %#v", lines)
	}
	if lines[0] != "one two" {
		t.Fatalf("emphasis not stripped or wrap wrong: %#v", lines)
	}
	if lines[len(lines)-2] != "" || lines[len(lines)-1] != "seven" {
		t.Fatalf("paragraph break missing: %#v", lines)
	}
}
