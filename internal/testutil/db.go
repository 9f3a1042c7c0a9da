// Package testutil provides a migrated in-memory database for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"konservasi-platform/migrations"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// Metrics returns a collector on a private registry
func Metrics() *metrics.Collector {
	return metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry())
}

// NewDB opens an in-memory SQLite database with the full schema applied.
// A single pooled connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &database.Config{
		Driver:          database.DriverSQLite,
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := logging.Nop()
	db, err := database.Open(cfg, logger, Metrics())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.Up(context.Background(), db, logger)
	require.NoError(t, err)

	return db
}
