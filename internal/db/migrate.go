package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Rim-SeungJae/eternal-survival/internal/db/migrations"
)

// MigrationReport describes one RunMigrations call.
type MigrationReport struct {
	// Applied lists the versions applied by this call, ascending.
	Applied []int64
	// Version is the schema version afterwards.
	Version int64
}

// RunMigrations applies the pending catalog migrations on the given DSN.
// A schema that is already current is left untouched.
func RunMigrations(ctx context.Context, dsn string) (MigrationReport, error) {
	var rep MigrationReport

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return rep, fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS,
		goose.WithSlog(slog.Default().With("component", "migrations")))
	if err != nil {
		_ = sqlDB.Close()
		return rep, fmt.Errorf("creating migration provider: %w", err)
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return rep, fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		rep.Applied = append(rep.Applied, r.Source.Version)
	}

	rep.Version, err = provider.GetDBVersion(ctx)
	if err != nil {
		return rep, fmt.Errorf("reading schema version: %w", err)
	}

	slog.Info("catalog schema ready",
		"version", rep.Version,
		"applied", rep.Applied)
	return rep, nil
}
