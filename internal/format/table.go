package format

import (
	"html"
	"regexp"
	"strings"

	"chatwidget/internal/model"
)

// ExtractTable returns the first contiguous run of two or more lines that
// begin and end with a pipe. The first line is the header.
func ExtractTable(text string) (model.TableRows, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var run []string
	for _, line := range lines {
		if isPipeLine(line) {
			run = append(run, line)
			continue
		}
		if len(run) >= 2 {
			break
		}
		run = run[:0]
	}
	if len(run) < 2 {
		return model.TableRows{}, false
	}

	rows := make([][]string, 0, len(run)-1)
	for _, line := range run[1:] {
		rows = append(rows, splitCells(line))
	}
	return model.TableRows{
		Headers: splitCells(run[0]),
		Rows:    rows,
	}, true
}

func isPipeLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// splitCells splits on pipes and drops the empty fields outside the outer pipes.
func splitCells(line string) []string {
	fields := strings.Split(strings.TrimSpace(line), "|")
	fields = fields[1 : len(fields)-1]
	cells := make([]string, len(fields))
	for i, field := range fields {
		cells[i] = strings.TrimSpace(field)
	}
	return cells
}

var alignmentCell = regexp.MustCompile(`^:?-+:?$`)

// isAlignmentRow reports whether row is a Markdown header separator such as |---|:-:|.
func isAlignmentRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if !alignmentCell.MatchString(cell) {
			return false
		}
	}
	return true
}

func renderTable(t model.TableRows) string {
	var b strings.Builder
	b.WriteString(`<div class="response-table"><table><thead><tr>`)
	for _, header := range t.Headers {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(header))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for i, row := range t.Rows {
		if i == 0 && isAlignmentRow(row) {
			continue
		}
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></div>")
	return b.String()
}
