package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/pathgen/internal/db/migrations"
)

// RunMigrations applies the embedded migrations up to the latest version.
func RunMigrations(ctx context.Context, dsn string) error {
	return withMigrator(dsn, func(conn *sql.DB) error {
		if err := goose.UpContext(ctx, conn, "."); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		return nil
	})
}

// SchemaVersion returns the latest applied migration version.
func SchemaVersion(ctx context.Context, dsn string) (int64, error) {
	var version int64
	err := withMigrator(dsn, func(conn *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, conn)
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// goose работает только с database/sql, поэтому отдельное соединение через pgx stdlib.
func withMigrator(dsn string, fn func(*sql.DB) error) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return fn(conn)
}
