// Package migrations embeds the schema for each supported driver and applies it.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFS embed.FS

const trackingTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`

// Files returns the migration filenames for a driver and direction, in apply order
func Files(driver, direction string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, driver)
	if err != nil {
		return nil, eris.Wrapf(err, "no migrations for driver %s", driver)
	}

	suffix := "." + direction + ".sql"
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}

// Up applies every pending up migration and returns the applied filenames
func Up(ctx context.Context, db *database.DB, logger *logging.StructuredLogger) ([]string, error) {
	if _, err := db.ExecContext(ctx, "migrate_tracking", trackingTable); err != nil {
		return nil, eris.Wrap(err, "failed to ensure migration table")
	}

	names, err := Files(db.Driver(), "up")
	if err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		key := strings.TrimSuffix(name, ".up.sql")
		if applied[key] {
			continue
		}

		data, err := migrationFS.ReadFile(path.Join(db.Driver(), name))
		if err != nil {
			return ran, eris.Wrapf(err, "failed to read migration %s", name)
		}

		logger.Info(ctx, "[MIGRATE] Applying migration", logging.Fields{"file": name, "driver": db.Driver()})

		if _, err := db.DB().ExecContext(ctx, string(data)); err != nil {
			return ran, eris.Wrapf(err, "failed to apply migration %s", name)
		}
		if _, err := db.ExecContext(ctx, "migrate_record",
			"INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)",
			key, time.Now().UTC(),
		); err != nil {
			return ran, eris.Wrapf(err, "failed to record migration %s", name)
		}
		ran = append(ran, name)
	}

	return ran, nil
}

// Down reverts every applied migration in reverse order
func Down(ctx context.Context, db *database.DB, logger *logging.StructuredLogger) ([]string, error) {
	if _, err := db.ExecContext(ctx, "migrate_tracking", trackingTable); err != nil {
		return nil, eris.Wrap(err, "failed to ensure migration table")
	}

	names, err := Files(db.Driver(), "down")
	if err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		key := strings.TrimSuffix(name, ".down.sql")
		if !applied[key] {
			continue
		}

		data, err := migrationFS.ReadFile(path.Join(db.Driver(), name))
		if err != nil {
			return ran, eris.Wrapf(err, "failed to read migration %s", name)
		}

		logger.Info(ctx, "[MIGRATE] Reverting migration", logging.Fields{"file": name, "driver": db.Driver()})

		if _, err := db.DB().ExecContext(ctx, string(data)); err != nil {
			return ran, eris.Wrapf(err, "failed to revert migration %s", name)
		}
		if _, err := db.ExecContext(ctx, "migrate_record",
			"DELETE FROM schema_migrations WHERE filename = ?", key,
		); err != nil {
			return ran, eris.Wrapf(err, "failed to unrecord migration %s", name)
		}
		ran = append(ran, name)
	}

	return ran, nil
}

func appliedMigrations(ctx context.Context, db *database.DB) (map[string]bool, error) {
	var names []string
	if err := db.SelectContext(ctx, "migrate_applied", &names, "SELECT filename FROM schema_migrations"); err != nil {
		return nil, eris.Wrap(err, "failed to query applied migrations")
	}

	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}
	return applied, nil
}
