// Package migrations embeds the PostgreSQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	dir       = "sql"
	tableName = "schema_migrations"
)

//go:embed sql/*.sql
var FS embed.FS

// Up applies every pending migration.
func Up(ctx context.Context, dsn string) error {
	return run(ctx, dsn, "up")
}

// Down rolls back the latest migration.
func Down(ctx context.Context, dsn string) error {
	return run(ctx, dsn, "down")
}

func run(ctx context.Context, dsn, command string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	return RunOn(ctx, db, command)
}

// RunOn runs a goose command against an open database handle.
func RunOn(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(FS)
	goose.SetTableName(tableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
