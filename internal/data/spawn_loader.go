package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/pathgen/internal/model"
)

// SpawnSet is the content of a spawn file.
type SpawnSet struct {
	Creatures []model.Spawn
	Players   []model.PlayerSpawn
}

// ParseSpawns decodes creature and player spawns. GUIDs must be unique
// within each list.
func ParseSpawns(raw []byte) (*SpawnSet, error) {
	var f spawnFile
	if err := decodeYAML(raw, &f); err != nil {
		return nil, err
	}

	set := &SpawnSet{
		Creatures: make([]model.Spawn, 0, len(f.Creatures)),
		Players:   make([]model.PlayerSpawn, 0, len(f.Players)),
	}

	seen := make(map[uint64]struct{}, len(f.Creatures))
	for _, c := range f.Creatures {
		if c.GUID == 0 {
			return nil, fmt.Errorf("creature spawn %q without guid: %w", c.Name, ErrInvalidData)
		}
		if _, dup := seen[c.GUID]; dup {
			return nil, fmt.Errorf("creature spawn %d: %w", c.GUID, ErrDuplicateID)
		}
		seen[c.GUID] = struct{}{}

		loc := model.NewLocation(c.X, c.Y, c.Z, c.Orientation)
		reportNonFinite(loc.Pos, "creature", c.GUID)
		repeating := c.Repeating == nil || *c.Repeating
		set.Creatures = append(set.Creatures, model.Spawn{
			ID:        c.GUID,
			Entry:     c.Entry,
			Name:      c.Name,
			MapID:     c.MapID,
			Loc:       loc,
			PathID:    c.Path,
			Repeating: repeating,
		})
	}

	clear(seen)
	for _, p := range f.Players {
		if p.GUID == 0 {
			return nil, fmt.Errorf("player spawn %q without guid: %w", p.Name, ErrInvalidData)
		}
		if _, dup := seen[p.GUID]; dup {
			return nil, fmt.Errorf("player spawn %d: %w", p.GUID, ErrDuplicateID)
		}
		seen[p.GUID] = struct{}{}

		loc := model.NewLocation(p.X, p.Y, p.Z, p.Orientation)
		reportNonFinite(loc.Pos, "player", p.GUID)
		set.Players = append(set.Players, model.PlayerSpawn{
			GUID:  p.GUID,
			Name:  p.Name,
			MapID: p.MapID,
			Loc:   loc,
			Money: p.Money,
		})
	}
	return set, nil
}

// LoadSpawnFile читает файл спавнов.
func LoadSpawnFile(path string) (*SpawnSet, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	set, err := ParseSpawns(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	slog.Info("loaded spawns", "file", path, "creatures", len(set.Creatures), "players", len(set.Players))
	return set, nil
}

// SpawnFile is a creature spawn source backed by one YAML file.
type SpawnFile string

func (f SpawnFile) LoadSpawns(ctx context.Context) ([]model.Spawn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := LoadSpawnFile(string(f))
	if err != nil {
		return nil, err
	}
	return set.Creatures, nil
}
