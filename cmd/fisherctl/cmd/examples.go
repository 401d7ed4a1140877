package cmd

import (
	"github.com/spf13/cobra"
)

func examplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Solve the bundled example markets and print their equilibria.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return app.Examples(cmd.Context())
		},
	}
}
