// Package migrations embeds the database schema and applies it with
// goose at startup. The serving path uses a pgx pool; migrations go
// through database/sql via the pgx stdlib driver, which is what goose
// expects.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// Run applies all pending migrations against the database at dsn.
func Run(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}
	defer func() { _ = db.Close() }()

	return RunWithDB(ctx, db)
}

// RunWithDB applies all pending migrations on an existing connection.
func RunWithDB(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrations: dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
