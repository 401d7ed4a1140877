package cmd

import (
	"github.com/spf13/cobra"
)

func egalitarianCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "egalitarian",
		Short: "Divide resources to maximize the smallest player utility and print the division.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			path, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}
			return app.DivideFile(path)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Path to the market definition (YAML, JSON or TOML).")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}
