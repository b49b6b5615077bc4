package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
)

type waypointFile struct {
	Paths []waypointPathDef `yaml:"paths"`
}

type waypointPathDef struct {
	ID    uint32            `yaml:"id"`
	Nodes []waypointNodeDef `yaml:"nodes"`
}

type waypointNodeDef struct {
	ID          uint32  `yaml:"id"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Z           float64 `yaml:"z"`
	Orientation float64 `yaml:"orientation"`
	Delay       uint32  `yaml:"delay"` // ms
	Event       uint32  `yaml:"event"`
	Chance      *uint8  `yaml:"chance"` // default 100
	Move        string  `yaml:"move"`
}

// ParseWaypointPaths decodes a YAML document with a top-level "paths" list.
// Node ids default to their 1-based position.
func ParseWaypointPaths(raw []byte) ([]*model.WaypointPath, error) {
	var f waypointFile
	if err := decodeYAML(raw, &f); err != nil {
		return nil, err
	}

	paths := make([]*model.WaypointPath, 0, len(f.Paths))
	seen := make(map[uint32]struct{}, len(f.Paths))
	for _, def := range f.Paths {
		if def.ID == 0 {
			return nil, fmt.Errorf("waypoint path without id: %w", ErrInvalidData)
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("waypoint path %d: %w", def.ID, ErrDuplicateID)
		}
		seen[def.ID] = struct{}{}
		paths = append(paths, buildWaypointPath(def))
	}
	return paths, nil
}

func buildWaypointPath(def waypointPathDef) *model.WaypointPath {
	if len(def.Nodes) == 0 {
		slog.Warn("waypoint path has no nodes", "path", def.ID)
	}

	nodes := make([]model.WaypointNode, 0, len(def.Nodes))
	for i, n := range def.Nodes {
		id := n.ID
		if id == 0 {
			id = uint32(i + 1)
		}

		chance := uint8(100)
		if n.Chance != nil {
			chance = *n.Chance
		}
		if chance > 100 {
			slog.Warn("event chance above 100, clamped", "path", def.ID, "node", id, "chance", chance)
			chance = 100
		}

		move, ok := model.ParseWaypointMoveType(n.Move)
		if !ok {
			slog.Warn("unknown waypoint move type, using walk", "path", def.ID, "node", id, "move", n.Move)
		}

		pos := mgl64.Vec3{n.X, n.Y, n.Z}
		reportNonFinite(pos, "path", def.ID, "node", id)

		nodes = append(nodes, model.WaypointNode{
			ID:          id,
			Pos:         pos,
			Orientation: n.Orientation,
			Delay:       n.Delay,
			EventID:     n.Event,
			EventChance: chance,
			MoveType:    move,
		})
	}
	return model.NewWaypointPath(def.ID, nodes)
}

// LoadWaypointDir loads every YAML file in dir. Path ids must be unique
// across all files.
func LoadWaypointDir(dir string) ([]*model.WaypointPath, error) {
	files, err := listDataFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []*model.WaypointPath
	owner := make(map[uint32]string)
	for _, file := range files {
		raw, err := readFile(file)
		if err != nil {
			return nil, err
		}
		paths, err := ParseWaypointPaths(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		for _, p := range paths {
			if prev, dup := owner[p.ID()]; dup {
				return nil, fmt.Errorf("waypoint path %d in %s and %s: %w", p.ID(), prev, file, ErrDuplicateID)
			}
			owner[p.ID()] = file
		}
		all = append(all, paths...)
	}

	slog.Info("loaded waypoint paths", "dir", dir, "files", len(files), "paths", len(all))
	return all, nil
}

// WaypointDir is a waypoint path source backed by a directory of YAML files.
type WaypointDir string

func (d WaypointDir) LoadWaypointPaths(ctx context.Context) ([]*model.WaypointPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadWaypointDir(string(d))
}
