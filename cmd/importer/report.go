package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/services"
)

// noTrendData is printed when no assessment matches the filter
const noTrendData = "Tidak ada data untuk analisis trend"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export assessments to CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Print yearly averages, the overall trend and the largest changes",
	Args:  cobra.NoArgs,
	RunE:  runTrend,
}

func init() {
	exportCmd.Flags().String("format", "csv", "csv or xlsx")
	exportCmd.Flags().String("scope", "all", "all, year or area")
	exportCmd.Flags().Int("year", 0, "year for --scope=year")
	exportCmd.Flags().Int64("area-id", 0, "area for --scope=area")
	exportCmd.Flags().String("out", "", "output directory or file (default: generated name in the working directory)")

	trendCmd.Flags().Int64("area-id", 0, "restrict to one area")
	trendCmd.Flags().Int("year", 0, "restrict to one year")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(trendCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	scope, _ := cmd.Flags().GetString("scope")
	year, _ := cmd.Flags().GetInt("year")
	areaID, _ := cmd.Flags().GetInt64("area-id")
	out, _ := cmd.Flags().GetString("out")

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	file, err := a.Export.Export(ctx, services.ExportRequest{
		Format: services.FileFormat(format),
		Scope:  efektivitas.ExportScope(scope),
		Year:   year,
		AreaID: areaID,
	})
	if err != nil {
		return err
	}

	path := file.Filename
	if out != "" {
		path = out
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			path = filepath.Join(out, file.Filename)
		}
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d row(s) to %s\n", file.Rows, path)
	return nil
}

func runTrend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var filter models.AssessmentFilter
	if cmd.Flags().Changed("area-id") {
		id, _ := cmd.Flags().GetInt64("area-id")
		filter.AreaID = &id
	}
	if cmd.Flags().Changed("year") {
		y, _ := cmd.Flags().GetInt("year")
		filter.Year = &y
	}

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Statistics.Trend(ctx, filter)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if report == nil {
		fmt.Fprintln(w, noTrendData)
		return nil
	}

	banner(w, "TREND "+string(report.Trend))
	fmt.Fprintf(w, "%-6s %8s %6s  %s\n", "Year", "Average", "Count", "Category")
	for _, y := range report.YearlyAverages {
		fmt.Fprintf(w, "%-6d %8.1f %6d  %s\n", y.Year, y.Average, y.Count, y.Category.Label())
	}

	if len(report.TopChanges) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nLargest changes:")
	for _, c := range report.TopChanges {
		pct := "-"
		if c.ChangePercent != nil {
			pct = fmt.Sprintf("%+d%%", *c.ChangePercent)
		}
		fmt.Fprintf(w, "  %s: %d (%d) -> %d (%d), %+d, %s\n",
			c.AreaName, c.FirstScore, c.FirstYear, c.LastScore, c.LastYear, c.Change, pct)
	}
	return nil
}
