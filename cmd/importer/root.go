package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"konservasi-platform/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "konservasi-importer",
	Short:         "Batch import, export and analysis of conservation area assessments",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().Bool("migrate", false, "apply pending migrations before running")
}

func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	configFile, _ := cmd.Flags().GetString("config")
	migrate, _ := cmd.Flags().GetBool("migrate")
	return app.Open(ctx, app.Options{
		ConfigFile: configFile,
		Service:    "konservasi-importer",
		Migrate:    migrate,
	})
}

func banner(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))
}
