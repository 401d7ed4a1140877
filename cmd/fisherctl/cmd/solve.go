package cmd

import (
	"github.com/spf13/cobra"
)

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a market defined in a config file and print its equilibrium.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			path, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			return app.SolveFile(cmd.Context(), path)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Path to the market definition (YAML, JSON or TOML).")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}
