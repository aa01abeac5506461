package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"chatwidget/internal/model"
)

// Summary describes how one input was classified.
type Summary struct {
	Source  string     `json:"source"`
	Kind    model.Kind `json:"kind"`
	Label   string     `json:"label,omitempty"`
	Columns int        `json:"columns,omitempty"`
	Rows    int        `json:"rows,omitempty"`
	Preview string     `json:"preview"`
}

// Summarize builds a Summary for a formatted block.
func Summarize(source, raw string, block model.Block, maxPreview int) Summary {
	s := Summary{
		Source:  source,
		Kind:    block.Kind,
		Preview: clip(strings.Join(strings.Fields(raw), " "), maxPreview),
	}
	if block.Code != nil {
		s.Label = block.Code.Label()
	}
	if block.Table != nil {
		s.Columns = len(block.Table.Headers)
		s.Rows = len(block.Table.Rows)
	}
	return s
}

// WriteSummaries writes classification summaries to w in the requested format.
func WriteSummaries(w io.Writer, items []Summary, includeHeader bool, format string) error {
	format = strings.ToLower(format)
	switch format {
	case "", "table":
		return writeSummariesTable(w, items, includeHeader)
	case "plain":
		return writeSummariesPlain(w, items, includeHeader)
	case "json":
		return writeSummariesJSON(w, items)
	case "jsonl":
		return writeSummariesJSONL(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSummariesPlain(w io.Writer, items []Summary, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "source\tkind\tlabel\tcolumns\trows\tpreview"); err != nil {
			return err
		}
	}

	for _, item := range items {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%d\t%s",
			item.Source,
			item.Kind,
			dash(item.Label),
			item.Columns,
			item.Rows,
			item.Preview,
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSummariesJSON(w io.Writer, items []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeSummariesJSONL(w io.Writer, items []Summary) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writeSummariesTable(w io.Writer, items []Summary, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 6, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Source", "Kind", "Label", "Columns", "Rows", "Preview"})
	}

	for _, item := range items {
		tw.AppendRow(table.Row{
			item.Source,
			string(item.Kind),
			dash(item.Label),
			item.Columns,
			item.Rows,
			item.Preview,
		})
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"(no input)", "-", "-", 0, 0, "-"})
	}

	_ = tw.Render()
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clip(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
