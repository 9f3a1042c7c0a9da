package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/internal/app"
	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"import", "export", "trend", "boundaries", "template"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("migrate"))
	assert.NotNil(t, importCmd.Flags().Lookup("dry-run"))
	assert.NotNil(t, exportCmd.Flags().Lookup("scope"))
	assert.Equal(t, "csv", exportCmd.Flags().Lookup("format").DefValue)
}

func TestTemplateCommand(t *testing.T) {
	out, err := execute(t, "template")
	require.NoError(t, err)
	assert.Equal(t, efektivitas.TemplateCSV, out)

	path := filepath.Join(t.TempDir(), "template.csv")
	out, err = execute(t, "template", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, efektivitas.TemplateCSV, string(data))
}

func TestImportTrendAndExportAgainstSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KONSERVASI_DATABASE_DRIVER", "sqlite")
	t.Setenv("KONSERVASI_DATABASE_PATH", filepath.Join(dir, "konservasi.db"))
	t.Setenv("KONSERVASI_LOGGING_LEVEL", "error")

	ctx := context.Background()
	a, err := app.Open(ctx, app.Options{Service: "test", Migrate: true})
	require.NoError(t, err)
	for _, name := range []string{"Rimbo Panti", "Lembah Anai"} {
		_, err := a.Areas.Create(ctx, &models.AreaInput{Name: name, Category: models.CagarAlam})
		require.NoError(t, err)
	}
	require.NoError(t, a.Close())

	out, err := execute(t, "trend")
	require.NoError(t, err)
	assert.Contains(t, out, noTrendData)

	file := filepath.Join(dir, "efektivitas.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"nama_kawasan,tahun,skor,keterangan\n"+
			"Rimbo Panti,2022,40,\n"+
			"Lembah Anai,2022,40,\n"+
			"Rimbo Panti,2024,70,\n"+
			"Lembah Anai,2024,70,\n"+
			"Kawasan Fiktif,2024,50,\n"), 0o644))

	out, err = execute(t, "import", file, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "PREVIEW COMPLETE")
	assert.Contains(t, out, "Inserted:           0")

	out, err = execute(t, "import", file, "--dry-run=false")
	require.NoError(t, err)
	assert.Contains(t, out, "IMPORT COMPLETE")
	assert.Contains(t, out, "Valid Records:      4")
	assert.Contains(t, out, "Invalid Records:    1")
	assert.Contains(t, out, "Inserted:           4")
	assert.Contains(t, out, "row 6 [INVALID]")

	out, err = execute(t, "trend")
	require.NoError(t, err)
	assert.Contains(t, out, "TREND UP")
	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "Largest changes:")

	out, err = execute(t, "export", "--format", "csv", "--scope", "year", "--year", "2024", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 row(s)")
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	t.Setenv("KONSERVASI_DATABASE_DRIVER", "sqlite")
	t.Setenv("KONSERVASI_DATABASE_PATH", filepath.Join(t.TempDir(), "konservasi.db"))
	t.Setenv("KONSERVASI_LOGGING_LEVEL", "error")

	_, err := execute(t, "import", "data.txt", "--migrate", "--dry-run")
	require.Error(t, err)
}
