package model

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens the sqlite database at dsn. SQLite has a single writer, so the
// pool is held at one connection.
func Open(dsn string) (*bun.DB, error) {
	rawDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)
	if err := rawDB.Ping(); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("Open: can't ping database: %w", err)
	}
	return bun.NewDB(rawDB, sqlitedialect.New()), nil
}

// CreateSchema applies every pending migration. The goose_db_version table
// keeps the schema version, so migrations only ever get appended.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, migrations)
	if err != nil {
		return fmt.Errorf("CreateSchema: can't create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}
	for _, result := range results {
		slog.Debug("migration applied", "source", result.Source.Path, "duration", result.Duration)
	}
	return nil
}
