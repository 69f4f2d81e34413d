package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"sheet-importer/internal/app"
)

func newRulesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules found in the rules directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Listing never writes.
			a, err := global.app(cmd, func(cfg *app.Config) { cfg.DryRun = true })
			if err != nil {
				return err
			}

			rules, diags := a.LoadRules(cmd.Context())
			out := cmd.OutOrStdout()

			for _, r := range rules {
				fmt.Fprintln(out, r.Describe())
			}

			fmt.Fprintf(out, "%d rule(s) loaded from %s\n", len(rules), a.Config().RulesDir)

			for _, d := range slices.Concat(diags.Errors, diags.Warnings) {
				fmt.Fprintf(out, "%s\n", d)
			}

			if diags.HasErrors() {
				return errRunFailed
			}

			return nil
		},
	}
}
