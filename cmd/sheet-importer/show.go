package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type> <id>",
		Short: "Print a stored record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := global.app(cmd, nil)
			if err != nil {
				return err
			}

			rec, err := a.Show(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding record: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return nil
		},
	}
}
