package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/world"
)

// SpawnRepository loads creature spawns (YAML file or database).
type SpawnRepository interface {
	LoadSpawns(ctx context.Context) ([]model.Spawn, error)
}

// Manager places creatures from spawn records and starts their waypoint movement.
//
// DoSpawn, Despawn и SpawnAll меняют карты: вызывать до старта мира или из тика
// (world.Manager.Do). Остальные методы потокобезопасны.
type Manager struct {
	spawns    sync.Map // map[uint64]model.Spawn
	live      sync.Map // map[uint64]*unit.Creature
	spawnRepo SpawnRepository
	world     *world.Manager
	paths     movement.PathStore
	events    movement.EventDispatcher
	observer  unit.Observer

	spawnCount atomic.Int32 // cached count of spawns
}

// NewManager creates new spawn manager.
func NewManager(
	spawnRepo SpawnRepository,
	w *world.Manager,
	paths movement.PathStore,
	events movement.EventDispatcher,
) *Manager {
	return &Manager{
		spawnRepo: spawnRepo,
		world:     w,
		paths:     paths,
		events:    events,
	}
}

// SetObserver attaches o to every creature spawned afterwards.
func (m *Manager) SetObserver(o unit.Observer) { m.observer = o }

// LoadSpawns replaces the spawn records with the repository's contents.
// Creatures already in the world are left alone.
func (m *Manager) LoadSpawns(ctx context.Context) error {
	spawns, err := m.spawnRepo.LoadSpawns(ctx)
	if err != nil {
		return fmt.Errorf("loading spawns: %w", err)
	}

	m.spawns.Clear()
	for _, s := range spawns {
		m.spawns.Store(s.ID, s)
	}
	m.spawnCount.Store(int32(len(spawns)))

	slog.Info("spawns loaded", "count", len(spawns))
	return nil
}

// DoSpawn creates the creature of s, adds it to its map and, when s has a
// path, starts waypoint movement. The creature's GUID is the spawn ID.
func (m *Manager) DoSpawn(s model.Spawn) (*unit.Creature, error) {
	if _, ok := m.live.Load(s.ID); ok {
		return nil, fmt.Errorf("spawn %d: %w", s.ID, ErrAlreadySpawned)
	}

	c := unit.NewCreature(s.ID, s.Entry, s.Name, s.MapID, s.Loc, s.PathID)
	if m.observer != nil {
		c.SetObserver(m.observer)
	}
	if err := m.world.AddCreature(c); err != nil {
		return nil, fmt.Errorf("adding creature to world: %w", err)
	}
	m.live.Store(s.ID, c)

	if s.PathID != 0 {
		c.MoveWaypoint(m.paths, m.events, s.PathID, s.Repeating)
	}

	slog.Debug("creature spawned",
		"guid", c.GUID(),
		"name", c.Name(),
		"entry", s.Entry,
		"map", s.MapID,
		"path", s.PathID)

	return c, nil
}

// Despawn removes the creature of spawnID from the world. Its movement is
// finalized by the map.
func (m *Manager) Despawn(spawnID uint64) bool {
	v, ok := m.live.LoadAndDelete(spawnID)
	if !ok {
		return false
	}
	c := v.(*unit.Creature)

	mp, err := m.world.Map(c.MapID())
	if err != nil {
		slog.Warn("despawning creature from unknown map", "guid", c.GUID(), "map", c.MapID())
		return true
	}
	if err := mp.RemoveCreature(c.GUID()); err != nil {
		slog.Warn("despawned creature was not on its map", "guid", c.GUID(), "error", err)
	}

	slog.Debug("creature despawned", "guid", c.GUID(), "name", c.Name())
	return true
}

// Respawn despawns and spawns spawnID again from its record.
func (m *Manager) Respawn(spawnID uint64) (*unit.Creature, error) {
	s, ok := m.GetSpawn(spawnID)
	if !ok {
		return nil, fmt.Errorf("spawn %d: %w", spawnID, ErrSpawnNotFound)
	}
	m.Despawn(spawnID)
	return m.DoSpawn(s)
}

// GetSpawn returns spawn by ID.
func (m *Manager) GetSpawn(spawnID uint64) (model.Spawn, bool) {
	v, ok := m.spawns.Load(spawnID)
	if !ok {
		return model.Spawn{}, false
	}
	return v.(model.Spawn), true
}

// Creature returns the live creature of spawnID.
func (m *Manager) Creature(spawnID uint64) (*unit.Creature, bool) {
	v, ok := m.live.Load(spawnID)
	if !ok {
		return nil, false
	}
	return v.(*unit.Creature), true
}

// SpawnCount returns total number of spawn records.
func (m *Manager) SpawnCount() int {
	return int(m.spawnCount.Load())
}

// LiveCount returns the number of creatures currently in the world.
func (m *Manager) LiveCount() int {
	n := 0
	m.live.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// SpawnAll spawns a creature for every loaded record not yet in the world.
// A failing record is logged and skipped.
func (m *Manager) SpawnAll() error {
	count := 0
	var firstErr error

	m.spawns.Range(func(_, value any) bool {
		s := value.(model.Spawn)
		if _, ok := m.live.Load(s.ID); ok {
			return true
		}
		if _, err := m.DoSpawn(s); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn creature",
				"spawnID", s.ID,
				"entry", s.Entry,
				"error", err)
			return true
		}
		count++
		return true
	})

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return fmt.Errorf("spawning all creatures: %w", firstErr)
	}

	slog.Info("all creatures spawned", "count", count)
	return nil
}
