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

// TaxiRepository reads and writes taxi_nodes, taxi_path and taxi_path_node.
// It implements taxi.Source.
type TaxiRepository struct {
	pool *pgxpool.Pool
}

func NewTaxiRepository(pool *pgxpool.Pool) *TaxiRepository {
	return &TaxiRepository{pool: pool}
}

// LoadTaxi loads all stations and legs with their nodes.
func (r *TaxiRepository) LoadTaxi(ctx context.Context) ([]model.TaxiStation, []model.TaxiLeg, error) {
	stations, err := r.loadStations(ctx)
	if err != nil {
		return nil, nil, err
	}
	legs, err := r.loadLegs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return stations, legs, nil
}

func (r *TaxiRepository) loadStations(ctx context.Context) ([]model.TaxiStation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, map_id, x, y, z FROM taxi_nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading taxi nodes: %w", err)
	}
	defer rows.Close()

	var stations []model.TaxiStation
	for rows.Next() {
		var (
			id, mapID int32
			name      string
			x, y, z   float64
		)
		if err := rows.Scan(&id, &name, &mapID, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("scanning taxi node row: %w", err)
		}
		stations = append(stations, model.TaxiStation{
			ID:    uint32(id),
			Name:  name,
			MapID: uint32(mapID),
			Pos:   mgl64.Vec3{x, y, z},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating taxi node rows: %w", err)
	}
	return stations, nil
}

func (r *TaxiRepository) loadLegs(ctx context.Context) ([]model.TaxiLeg, error) {
	query := `
		SELECT p.id, p.from_node, p.to_node, p.cost,
		       n.idx, n.map_id, n.x, n.y, n.z, n.flags, n.delay, n.arrival_event, n.departure_event
		FROM taxi_path p
		JOIN taxi_path_node n ON n.path_id = p.id
		ORDER BY p.id, n.idx
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading taxi paths: %w", err)
	}
	defer rows.Close()

	var legs []model.TaxiLeg
	for rows.Next() {
		var (
			id, from, to, cost, idx, mapID, delay, arrival, departure int32
			x, y, z                                                   float64
			flags                                                     int16
		)
		if err := rows.Scan(&id, &from, &to, &cost, &idx, &mapID, &x, &y, &z, &flags, &delay, &arrival, &departure); err != nil {
			return nil, fmt.Errorf("scanning taxi path row: %w", err)
		}

		if len(legs) == 0 || legs[len(legs)-1].ID != uint32(id) {
			legs = append(legs, model.TaxiLeg{
				ID:   uint32(id),
				From: uint32(from),
				To:   uint32(to),
				Cost: cost,
			})
		}
		leg := &legs[len(legs)-1]
		leg.Nodes = append(leg.Nodes, model.TaxiNode{
			PathID:           uint32(id),
			Index:            uint32(idx),
			MapID:            uint32(mapID),
			Pos:              mgl64.Vec3{x, y, z},
			Flags:            model.TaxiNodeFlags(flags),
			Delay:            uint32(delay),
			ArrivalEventID:   uint32(arrival),
			DepartureEventID: uint32(departure),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating taxi path rows: %w", err)
	}
	return legs, nil
}

// SaveTaxi replaces all taxi tables in one transaction.
func (r *TaxiRepository) SaveTaxi(ctx context.Context, stations []model.TaxiStation, legs []model.TaxiLeg) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE taxi_path_node, taxi_path, taxi_nodes`); err != nil {
		return fmt.Errorf("truncating taxi tables: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range stations {
		batch.Queue(`INSERT INTO taxi_nodes (id, name, map_id, x, y, z) VALUES ($1,$2,$3,$4,$5,$6)`,
			int32(s.ID), s.Name, int32(s.MapID), s.Pos.X(), s.Pos.Y(), s.Pos.Z())
	}
	for _, l := range legs {
		batch.Queue(`INSERT INTO taxi_path (id, from_node, to_node, cost) VALUES ($1,$2,$3,$4)`,
			int32(l.ID), int32(l.From), int32(l.To), l.Cost)
	}
	br := tx.SendBatch(ctx, batch)
	for range len(stations) + len(legs) {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("insert taxi batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close taxi batch: %w", err)
	}

	var rows [][]any
	for _, l := range legs {
		for i, n := range l.Nodes {
			rows = append(rows, []any{
				int32(l.ID), int32(i), int32(n.MapID), n.Pos.X(), n.Pos.Y(), n.Pos.Z(),
				int16(n.Flags), int32(n.Delay), int32(n.ArrivalEventID), int32(n.DepartureEventID),
			})
		}
	}
	if len(rows) > 0 {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"taxi_path_node"},
			[]string{"path_id", "idx", "map_id", "x", "y", "z", "flags", "delay", "arrival_event", "departure_event"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("inserting taxi path nodes: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit taxi tables: %w", err)
	}
	slog.Debug("saved taxi tables", "stations", len(stations), "legs", len(legs), "nodes", len(rows))
	return nil
}
