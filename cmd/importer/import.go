package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"konservasi-platform/internal/efektivitas"
)

// maxListedErrors caps the per-row errors printed after an import
const maxListedErrors = 10

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Validate an assessment file and store its valid rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the sample import file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err := cmd.OutOrStdout().Write([]byte(efektivitas.TemplateCSV))
			return err
		}
		if err := os.WriteFile(out, []byte(efektivitas.TemplateCSV), 0o644); err != nil {
			return eris.Wrapf(err, "failed to write %s", out)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", out)
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "validate only, store nothing")
	templateCmd.Flags().String("out", "", "output path (default: stdout)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Ingestion.ImportFile(ctx, args[0], !dryRun)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	title := "IMPORT COMPLETE"
	if dryRun {
		title = "PREVIEW COMPLETE"
	}
	banner(w, title)
	fmt.Fprintf(w, "Total Records:      %d\n", result.Tally.Total)
	fmt.Fprintf(w, "Valid Records:      %d\n", result.Tally.Valid)
	fmt.Fprintf(w, "Invalid Records:    %d\n", result.Tally.Invalid)
	fmt.Fprintf(w, "Duplicate Records:  %d\n", result.Tally.Duplicate)
	fmt.Fprintf(w, "Inserted:           %d\n", result.Inserted)
	fmt.Fprintf(w, "Duration:           %v\n", result.Duration)

	var problems []efektivitas.ValidatedRecord
	for _, r := range result.Records {
		if r.Status != efektivitas.StatusValid {
			problems = append(problems, r)
		}
	}
	if len(problems) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nRejected rows (%d):\n", len(problems))
	for i, r := range problems {
		if i == maxListedErrors {
			fmt.Fprintf(w, "  ... and %d more rows\n", len(problems)-maxListedErrors)
			break
		}
		fmt.Fprintf(w, "  - row %d [%s] %s\n", r.Row, r.Status, r.Error)
	}
	return nil
}
