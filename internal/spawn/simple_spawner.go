package spawn

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/world"
)

// PlayerSpawner places the test characters listed in the spawn file.
type PlayerSpawner struct {
	world    *world.Manager
	observer unit.Observer
}

// NewPlayerSpawner creates new player spawner
func NewPlayerSpawner(w *world.Manager, observer unit.Observer) *PlayerSpawner {
	return &PlayerSpawner{world: w, observer: observer}
}

// Spawn creates the player of ps and adds it to the world.
func (s *PlayerSpawner) Spawn(ps model.PlayerSpawn) (*unit.Player, error) {
	p := unit.NewPlayer(ps.GUID, ps.Name, ps.MapID, ps.Loc, ps.Money)
	if s.observer != nil {
		p.SetObserver(s.observer)
	}
	if err := s.world.AddPlayer(p); err != nil {
		return nil, fmt.Errorf("adding player %q to world: %w", ps.Name, err)
	}

	slog.Info("player spawned",
		"guid", ps.GUID,
		"name", ps.Name,
		"map", ps.MapID,
		"money", ps.Money)
	return p, nil
}

// SpawnAll spawns every player; failures are logged and counted.
func (s *PlayerSpawner) SpawnAll(players []model.PlayerSpawn) int {
	count := 0
	for _, ps := range players {
		if _, err := s.Spawn(ps); err != nil {
			slog.Error("failed to spawn player", "guid", ps.GUID, "error", err)
			continue
		}
		count++
	}
	return count
}
