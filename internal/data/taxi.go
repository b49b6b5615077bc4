package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
)

type taxiFile struct {
	Stations []taxiStationDef `yaml:"stations"`
	Legs     []taxiLegDef     `yaml:"legs"`
}

type taxiStationDef struct {
	ID    uint32  `yaml:"id"`
	Name  string  `yaml:"name"`
	MapID uint32  `yaml:"map"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
}

type taxiLegDef struct {
	ID    uint32           `yaml:"id"`
	From  uint32           `yaml:"from"`
	To    uint32           `yaml:"to"`
	Cost  int32            `yaml:"cost"`
	Nodes []taxiLegNodeDef `yaml:"nodes"`
}

type taxiLegNodeDef struct {
	MapID          uint32  `yaml:"map"`
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	Z              float64 `yaml:"z"`
	Flags          uint8   `yaml:"flags"`
	Delay          uint32  `yaml:"delay"`
	ArrivalEvent   uint32  `yaml:"arrival_event"`
	DepartureEvent uint32  `yaml:"departure_event"`
}

// ParseTaxi decodes stations and legs and checks their references.
func ParseTaxi(raw []byte) ([]model.TaxiStation, []model.TaxiLeg, error) {
	var f taxiFile
	if err := decodeYAML(raw, &f); err != nil {
		return nil, nil, err
	}

	stations := make([]model.TaxiStation, 0, len(f.Stations))
	known := make(map[uint32]struct{}, len(f.Stations))
	for _, s := range f.Stations {
		if s.ID == 0 {
			return nil, nil, fmt.Errorf("taxi station without id: %w", ErrInvalidData)
		}
		if _, dup := known[s.ID]; dup {
			return nil, nil, fmt.Errorf("taxi station %d: %w", s.ID, ErrDuplicateID)
		}
		known[s.ID] = struct{}{}

		pos := mgl64.Vec3{s.X, s.Y, s.Z}
		reportNonFinite(pos, "station", s.ID)
		stations = append(stations, model.TaxiStation{ID: s.ID, Name: s.Name, MapID: s.MapID, Pos: pos})
	}

	legs := make([]model.TaxiLeg, 0, len(f.Legs))
	legIDs := make(map[uint32]struct{}, len(f.Legs))
	pairs := make(map[[2]uint32]uint32, len(f.Legs))
	for _, l := range f.Legs {
		if err := validateLeg(l, known, legIDs, pairs); err != nil {
			return nil, nil, err
		}
		legIDs[l.ID] = struct{}{}
		pairs[[2]uint32{l.From, l.To}] = l.ID
		legs = append(legs, buildLeg(l))
	}
	return stations, legs, nil
}

func validateLeg(l taxiLegDef, stations, legIDs map[uint32]struct{}, pairs map[[2]uint32]uint32) error {
	if l.ID == 0 {
		return fmt.Errorf("taxi leg without id: %w", ErrInvalidData)
	}
	if _, dup := legIDs[l.ID]; dup {
		return fmt.Errorf("taxi leg %d: %w", l.ID, ErrDuplicateID)
	}
	if _, ok := stations[l.From]; !ok {
		return fmt.Errorf("taxi leg %d: unknown station %d: %w", l.ID, l.From, ErrInvalidData)
	}
	if _, ok := stations[l.To]; !ok {
		return fmt.Errorf("taxi leg %d: unknown station %d: %w", l.ID, l.To, ErrInvalidData)
	}
	if prev, dup := pairs[[2]uint32{l.From, l.To}]; dup {
		return fmt.Errorf("taxi legs %d and %d both connect %d->%d: %w", prev, l.ID, l.From, l.To, ErrDuplicateID)
	}
	if len(l.Nodes) == 0 {
		return fmt.Errorf("taxi leg %d has no nodes: %w", l.ID, ErrInvalidData)
	}
	if l.Cost < 0 {
		return fmt.Errorf("taxi leg %d: negative cost %d: %w", l.ID, l.Cost, ErrInvalidData)
	}
	return nil
}

func buildLeg(l taxiLegDef) model.TaxiLeg {
	nodes := make(model.TaxiPath, 0, len(l.Nodes))
	for i, n := range l.Nodes {
		pos := mgl64.Vec3{n.X, n.Y, n.Z}
		reportNonFinite(pos, "leg", l.ID, "node", i)
		nodes = append(nodes, model.TaxiNode{
			PathID:           l.ID,
			Index:            uint32(i),
			MapID:            n.MapID,
			Pos:              pos,
			Flags:            model.TaxiNodeFlags(n.Flags),
			Delay:            n.Delay,
			ArrivalEventID:   n.ArrivalEvent,
			DepartureEventID: n.DepartureEvent,
		})
	}
	return model.TaxiLeg{ID: l.ID, From: l.From, To: l.To, Cost: l.Cost, Nodes: nodes}
}

// TaxiFile is a taxi table source backed by one YAML file.
type TaxiFile string

func (f TaxiFile) LoadTaxi(ctx context.Context) ([]model.TaxiStation, []model.TaxiLeg, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	raw, err := readFile(string(f))
	if err != nil {
		return nil, nil, err
	}
	stations, legs, err := ParseTaxi(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", f, err)
	}
	slog.Info("loaded taxi tables", "file", string(f), "stations", len(stations), "legs", len(legs))
	return stations, legs, nil
}
