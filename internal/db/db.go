// Package db stores waypoint paths, taxi tables and spawns in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// ApplicationName is reported to PostgreSQL for every pooled connection.
const ApplicationName = "pathserver"

// New opens a pool for dsn and checks the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

func (d *DB) Close() { d.pool.Close() }

func (d *DB) Waypoints() *WaypointRepository { return NewWaypointRepository(d.pool) }
func (d *DB) Taxi() *TaxiRepository          { return NewTaxiRepository(d.pool) }
func (d *DB) Spawns() *SpawnRepository       { return NewSpawnRepository(d.pool) }
