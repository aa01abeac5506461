package format

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	linkPattern      = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]*)\)`)
	headingPattern   = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	paragraphPattern = regexp.MustCompile(`\n[ \t]*\n\s*`)
	emphasisReplacer = strings.NewReplacer("**", "", "*", "", "`", "")
)

// CleanText strips Markdown emphasis markers, heading markers and link
// targets, leaving the readable text.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = emphasisReplacer.Replace(text)
	return headingPattern.ReplaceAllString(text, "")
}

// Paragraphs splits cleaned text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	parts := paragraphPattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// emphasisPattern compiles the vocabulary into a single case-insensitive
// alternation. Word boundaries are checked by wordMatches since \b only
// knows ASCII. It returns nil for an empty vocabulary.
func emphasisPattern(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, word := range words {
		if word = strings.TrimSpace(word); word != "" {
			quoted = append(quoted, regexp.QuoteMeta(word))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func (f *Formatter) renderProse(text string) string {
	paragraphs := Paragraphs(CleanText(text))
	if len(paragraphs) == 0 {
		return "<p></p>"
	}

	var b strings.Builder
	for _, paragraph := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(f.highlightWords(paragraph), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// highlightWords escapes paragraph and wraps vocabulary matches in highlight
// spans. Matching runs on the raw text so entities are never split.
func (f *Formatter) highlightWords(paragraph string) string {
	if f.emphasis == nil {
		return html.EscapeString(paragraph)
	}
	var b strings.Builder
	last := 0
	for _, loc := range wordMatches(f.emphasis, paragraph) {
		b.WriteString(html.EscapeString(paragraph[last:loc[0]]))
		b.WriteString(`<span class="highlight">`)
		b.WriteString(html.EscapeString(paragraph[loc[0]:loc[1]]))
		b.WriteString(`</span>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(paragraph[last:]))
	return b.String()
}

// wordMatches returns the matches of re in s that are not part of a longer
// word. A rejected match restarts the search one rune later.
func wordMatches(re *regexp.Regexp, s string) [][]int {
	var out [][]int
	for pos := 0; pos < len(s); {
		loc := re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && isWordBoundary(s, start, end) {
			out = append(out, []int{start, end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + size
	}
	return out
}

func isWordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
