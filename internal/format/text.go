package format

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"chatwidget/internal/model"
)

// RenderTextLines returns a plain-text rendering of a formatted block for
// terminals. raw is the reply the block was built from.
func RenderTextLines(raw string, block model.Block, wrapWidth int) []string {
	switch block.Kind {
	case model.KindCode:
		if block.Code == nil {
			break
		}
		lines := []string{"[" + block.Code.Label() + "]"}
		return append(lines, strings.Split(block.Code.Body, "\n")...)
	case model.KindTable:
		if block.Table == nil {
			break
		}
		return strings.Split(renderTableText(*block.Table), "\n")
	}

	var lines []string
	for idx, paragraph := range Paragraphs(CleanText(raw)) {
		if idx > 0 {
			lines = append(lines, "")
		}
		for _, line := range strings.Split(paragraph, "\n") {
			lines = append(lines, strings.Split(wrapBody(strings.TrimSpace(line), wrapWidth), "\n")...)
		}
	}
	return lines
}

func renderTableText(t model.TableRows) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for i, row := range t.Rows {
		if i == 0 && isAlignmentRow(row) {
			continue
		}
		r := make(table.Row, len(row))
		for j, cell := range row {
			r[j] = cell
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func wrapBody(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)

	return strings.Join(lines, "\n")
}
