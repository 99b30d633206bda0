package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// newTestDB starts a PostgreSQL 16 container, runs the migrations and
// returns a connected DB. Skipped with -short or when Docker is unavailable.
func newTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rep, err := RunMigrations(ctx, dsn)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, rep.Applied)
	require.Equal(t, int64(1), rep.Version)

	// a second run is a no-op
	rep, err = RunMigrations(ctx, dsn)
	require.NoError(t, err)
	require.Empty(t, rep.Applied)
	require.Equal(t, int64(1), rep.Version)

	d, err := New(ctx, dsn, 2)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d, dsn
}
