package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

func openSQLite(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(&database.Config{
		Driver:          database.DriverSQLite,
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}, logging.Nop(), metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFiles(t *testing.T) {
	for _, driver := range []string{database.DriverPostgres, database.DriverSQLite} {
		up, err := Files(driver, "up")
		require.NoError(t, err)
		down, err := Files(driver, "down")
		require.NoError(t, err)

		assert.Equal(t, []string{"001_create_schema.up.sql"}, up, driver)
		assert.Equal(t, []string{"001_create_schema.down.sql"}, down, driver)
	}

	_, err := Files("mysql", "up")
	assert.Error(t, err)
}

func TestUpDown_SQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	logger := logging.Nop()

	ran, err := Up(ctx, db, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_schema.up.sql"}, ran)

	// Second run is a no-op
	ran, err = Up(ctx, db, logger)
	require.NoError(t, err)
	assert.Empty(t, ran)

	var count int
	require.NoError(t, db.GetContext(ctx, "test", &count, "SELECT COUNT(*) FROM efektivitas_assessments"))
	assert.Equal(t, 0, count)

	ran, err = Down(ctx, db, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_schema.down.sql"}, ran)

	err = db.GetContext(ctx, "test", &count, "SELECT COUNT(*) FROM efektivitas_assessments")
	assert.Error(t, err)
}
