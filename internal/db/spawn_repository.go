package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pathgen/internal/model"
)

// ErrSpawnNotFound is returned by LoadByID for an unknown guid.
var ErrSpawnNotFound = errors.New("spawn not found")

// SpawnRepository handles creature spawn CRUD operations
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a new spawn repository
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

const spawnColumns = `guid, entry, name, map_id, x, y, z, orientation, path_id, repeating`

func scanSpawn(row pgx.Row) (model.Spawn, error) {
	var (
		guid                 int64
		entry, mapID, pathID int32
		name                 string
		x, y, z, o           float64
		repeating            bool
	)
	if err := row.Scan(&guid, &entry, &name, &mapID, &x, &y, &z, &o, &pathID, &repeating); err != nil {
		return model.Spawn{}, err
	}
	return model.Spawn{
		ID:        uint64(guid),
		Entry:     uint32(entry),
		Name:      name,
		MapID:     uint32(mapID),
		Loc:       model.NewLocation(x, y, z, o),
		PathID:    uint32(pathID),
		Repeating: repeating,
	}, nil
}

// LoadSpawns loads all spawns from database
func (r *SpawnRepository) LoadSpawns(ctx context.Context) ([]model.Spawn, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+spawnColumns+` FROM creature_spawns ORDER BY guid`)
	if err != nil {
		return nil, fmt.Errorf("loading all spawns: %w", err)
	}
	defer rows.Close()

	spawns := make([]model.Spawn, 0, 50)
	for rows.Next() {
		s, err := scanSpawn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		spawns = append(spawns, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}
	return spawns, nil
}

// LoadByID loads spawn by guid
func (r *SpawnRepository) LoadByID(ctx context.Context, guid uint64) (model.Spawn, error) {
	s, err := scanSpawn(r.pool.QueryRow(ctx,
		`SELECT `+spawnColumns+` FROM creature_spawns WHERE guid = $1`, int64(guid)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Spawn{}, fmt.Errorf("spawn %d: %w", guid, ErrSpawnNotFound)
	}
	if err != nil {
		return model.Spawn{}, fmt.Errorf("loading spawn %d: %w", guid, err)
	}
	return s, nil
}

// Save inserts or updates a spawn
func (r *SpawnRepository) Save(ctx context.Context, s model.Spawn) error {
	query := `
		INSERT INTO creature_spawns (` + spawnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (guid) DO UPDATE SET
			entry = $2, name = $3, map_id = $4, x = $5, y = $6, z = $7,
			orientation = $8, path_id = $9, repeating = $10
	`
	_, err := r.pool.Exec(ctx, query,
		int64(s.ID), int32(s.Entry), s.Name, int32(s.MapID),
		s.Loc.X(), s.Loc.Y(), s.Loc.Z(), s.Loc.Orientation,
		int32(s.PathID), s.Repeating,
	)
	if err != nil {
		return fmt.Errorf("saving spawn %d: %w", s.ID, err)
	}
	return nil
}

// Delete removes a spawn
func (r *SpawnRepository) Delete(ctx context.Context, guid uint64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM creature_spawns WHERE guid = $1`, int64(guid)); err != nil {
		return fmt.Errorf("deleting spawn %d: %w", guid, err)
	}
	return nil
}
