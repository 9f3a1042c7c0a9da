package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries <file.shp>",
	Short: "Attach shapefile boundaries to areas by registration number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Maps.ImportShapefile(ctx, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		banner(w, "BOUNDARIES IMPORTED")
		fmt.Fprintf(w, "Updated:   %d\n", len(result.Updated))
		fmt.Fprintf(w, "Unmatched: %d\n", len(result.Unmatched))
		fmt.Fprintf(w, "Skipped:   %d\n", result.Skipped)
		for _, reg := range result.Unmatched {
			fmt.Fprintf(w, "  - no area registered as %s\n", reg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}
