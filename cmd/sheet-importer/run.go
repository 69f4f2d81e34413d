package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheet-importer/internal/app"
)

type runOptions struct {
	dryRun      bool
	noOverwrite bool
	only        []string
	verbose     bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convert every rule's source and write the records",
		Long: `Load all rule files, convert each rule's spreadsheet and write the
resulting records to the store. Exits with status 1 when a rule was
skipped or any error diagnostic was reported.

Examples:
  sheet-importer run --config importer.yaml
  sheet-importer run --rules rules --source-root data --dest db
  sheet-importer run --only items,skills --dry-run -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := global.app(cmd, func(cfg *app.Config) {
				flags := cmd.Flags()
				if flags.Changed("dry-run") {
					cfg.DryRun = opts.dryRun
				}

				if flags.Changed("no-overwrite") {
					cfg.Overwrite = !opts.noOverwrite
				}

				if flags.Changed("only") {
					cfg.Only = opts.only
				}
			})
			if err != nil {
				return err
			}

			sum, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), sum.Format(opts.verbose))

			if !sum.OK() {
				return errRunFailed
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "convert without writing records")
	f.BoolVar(&opts.noOverwrite, "no-overwrite", false, "fail instead of replacing existing records")
	f.StringSliceVar(&opts.only, "only", nil, "run only the named rules")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "list warnings in the summary")

	return cmd
}
