package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pathgen/internal/model"
)

// WaypointRepository reads and writes waypoint_data.
// It implements waypoint.Source.
type WaypointRepository struct {
	pool *pgxpool.Pool
}

func NewWaypointRepository(pool *pgxpool.Pool) *WaypointRepository {
	return &WaypointRepository{pool: pool}
}

// LoadWaypointPaths loads every path ordered by point.
func (r *WaypointRepository) LoadWaypointPaths(ctx context.Context) ([]*model.WaypointPath, error) {
	query := `
		SELECT path_id, point, x, y, z, orientation, delay, event_id, event_chance, move_type
		FROM waypoint_data
		ORDER BY path_id, point
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading waypoint paths: %w", err)
	}
	defer rows.Close()

	var (
		paths   []*model.WaypointPath
		curID   uint32
		curNode []model.WaypointNode
	)
	flush := func() {
		if curNode != nil {
			paths = append(paths, model.NewWaypointPath(curID, curNode))
		}
	}

	for rows.Next() {
		var (
			pathID, point, delay, eventID int32
			x, y, z, orientation          float64
			chance, moveType              int16
		)
		if err := rows.Scan(&pathID, &point, &x, &y, &z, &orientation, &delay, &eventID, &chance, &moveType); err != nil {
			return nil, fmt.Errorf("scanning waypoint row: %w", err)
		}

		if uint32(pathID) != curID || curNode == nil {
			flush()
			curID = uint32(pathID)
			curNode = make([]model.WaypointNode, 0, 8)
		}
		curNode = append(curNode, model.WaypointNode{
			ID:          uint32(point),
			Pos:         mgl64.Vec3{x, y, z},
			Orientation: orientation,
			Delay:       uint32(delay),
			EventID:     uint32(eventID),
			EventChance: uint8(chance),
			MoveType:    model.WaypointMoveType(moveType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waypoint rows: %w", err)
	}
	flush()

	return paths, nil
}

// SavePaths replaces the given paths (full replace per path id).
func (r *WaypointRepository) SavePaths(ctx context.Context, paths []*model.WaypointPath) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, p := range paths {
		if _, err := tx.Exec(ctx, `DELETE FROM waypoint_data WHERE path_id = $1`, int32(p.ID())); err != nil {
			return fmt.Errorf("deleting waypoint path %d: %w", p.ID(), err)
		}

		nodes := p.Nodes()
		if len(nodes) == 0 {
			continue
		}
		rows := make([][]any, 0, len(nodes))
		for _, n := range nodes {
			rows = append(rows, []any{
				int32(p.ID()), int32(n.ID),
				n.Pos.X(), n.Pos.Y(), n.Pos.Z(), n.Orientation,
				int32(n.Delay), int32(n.EventID), int16(n.EventChance), int16(n.MoveType),
			})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"waypoint_data"},
			[]string{"path_id", "point", "x", "y", "z", "orientation", "delay", "event_id", "event_chance", "move_type"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("inserting waypoint path %d: %w", p.ID(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit waypoint paths: %w", err)
	}
	slog.Debug("saved waypoint paths", "count", len(paths))
	return nil
}
