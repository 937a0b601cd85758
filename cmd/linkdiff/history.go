package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/linkdiff/internal/app"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored extraction history, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			records, err := a.Store().Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			return printJSON(cmd, records)
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the stored extraction history",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Store().Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		}),
	})
	return cmd
}
