package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"konservasi-platform/internal/app"
	"konservasi-platform/migrations"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:           "konservasi-migrate",
	Short:         "Apply or revert the database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, "up", migrations.Up)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert every applied migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, "down", migrations.Down)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
}

type migrateFunc func(ctx context.Context, db *database.DB, logger *logging.StructuredLogger) ([]string, error)

func run(cmd *cobra.Command, direction string, fn migrateFunc) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configFile, _ := cmd.Flags().GetString("config")
	a, err := app.Open(ctx, app.Options{ConfigFile: configFile, Service: "konservasi-migrate"})
	if err != nil {
		return err
	}
	defer a.Close()

	ran, err := fn(ctx, a.DB, a.Logger)
	out := cmd.OutOrStdout()
	for _, name := range ran {
		fmt.Fprintf(out, "%s %s\n", direction, name)
	}
	if err != nil {
		return err
	}
	if len(ran) == 0 {
		fmt.Fprintln(out, "Nothing to migrate")
		return nil
	}
	fmt.Fprintf(out, "Migration %s completed: %d file(s)\n", direction, len(ran))
	return nil
}
