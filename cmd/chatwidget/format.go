package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chatwidget/internal/format"
	"chatwidget/internal/model"
	"chatwidget/internal/view"
)

func newFormatCmd() *cobra.Command {
	var (
		formatFlag   string
		wrap         int
		forceColor   bool
		forceNoColor bool
		highlight    bool
		css          bool
	)

	cmd := &cobra.Command{
		Use:   "format [file...]",
		Short: "Format model replies into widget HTML",
		Long:  "Format each file (or stdin) as code, table or prose the way the widget renders replies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			formatter := newFormatter(cfg, highlight)
			out := cmd.OutOrStdout()

			if css {
				return formatter.WriteHighlightCSS(out)
			}

			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			opts := view.Options{
				Format:       formatFlag,
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          out,
				OutFile:      outFile(out),
			}
			for idx, in := range inputs {
				if idx > 0 && formatFlag != "json" {
					fmt.Fprintln(out)
				}
				if err := view.RenderBlock(opts, in.text, formatter.Format(in.text)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "html", "output format: html, text, or json")
	flags.IntVar(&wrap, "wrap", 0, "wrap width for text output (0 uses the terminal width)")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&highlight, "highlight", false, "syntax-highlight code blocks with CSS classes")
	flags.BoolVar(&css, "css", false, "print the stylesheet for highlighted code and exit")

	return cmd
}

func newClassifyCmd() *cobra.Command {
	var (
		formatFlag   string
		noHeader     bool
		previewWidth int
		kindFilter   string
	)

	cmd := &cobra.Command{
		Use:   "classify [file...]",
		Short: "Show how replies would be classified",
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.Kind
			if kindFilter != "" {
				k, ok := model.ParseKind(kindFilter)
				if !ok {
					return fmt.Errorf("unknown kind %q (want code, table or prose)", kindFilter)
				}
				want = k
			}

			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			formatter := newFormatter(cfg, false)

			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			summaries := make([]format.Summary, 0, len(inputs))
			for _, in := range inputs {
				block := formatter.Format(in.text)
				if want != "" && block.Kind != want {
					continue
				}
				summaries = append(summaries, format.Summarize(in.source, in.text, block, previewWidth))
			}
			return format.WriteSummaries(cmd.OutOrStdout(), summaries, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for table and plain output")
	flags.IntVar(&previewWidth, "preview-width", 60, "maximum characters included in the preview column")
	flags.StringVar(&kindFilter, "kind", "", "only show replies of this kind: code, table, or prose")

	return cmd
}
