package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/linkdiff/internal/app"
	"github.com/JakeFAU/linkdiff/internal/extraction"
	"github.com/JakeFAU/linkdiff/internal/links"
)

func newExtractCmd() *cobra.Command {
	var internalOnly, removeQuery, removeAnchors bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract the links on one page and print the record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			req := extraction.Request{URL: args[0]}
			flags := cmd.Flags()
			if flags.Changed("internal-only") || flags.Changed("remove-query") || flags.Changed("remove-anchors") {
				req.Options = &links.OptionOverrides{}
				if flags.Changed("internal-only") {
					req.Options.InternalOnly = &internalOnly
				}
				if flags.Changed("remove-query") {
					req.Options.RemoveQuery = &removeQuery
				}
				if flags.Changed("remove-anchors") {
					req.Options.RemoveAnchors = &removeAnchors
				}
			}

			rec, err := a.Service().Extract(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			return printJSON(cmd, rec)
		}),
	}

	defaults := links.DefaultOptions()
	cmd.Flags().BoolVar(&internalOnly, "internal-only", defaults.InternalOnly, "keep only links on the same host")
	cmd.Flags().BoolVar(&removeQuery, "remove-query", defaults.RemoveQuery, "strip query strings")
	cmd.Flags().BoolVar(&removeAnchors, "remove-anchors", defaults.RemoveAnchors, "strip fragments")
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
