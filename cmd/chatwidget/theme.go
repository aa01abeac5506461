package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatwidget/internal/completion"
	"chatwidget/internal/model"
)

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the saved theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			themes := newThemeStore(cfg)

			var theme model.Theme
			switch {
			case len(args) == 0:
				theme, err = themes.Load()
			case strings.EqualFold(args[0], "toggle"):
				theme, err = themes.Toggle()
			default:
				theme, err = model.ParseTheme(args[0])
				if err == nil {
					err = themes.Save(theme)
				}
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), theme)
			return err
		},
	}
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered completion providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range completion.Providers() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
