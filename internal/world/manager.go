package world

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/unit"
)

// DefaultTickInterval is the world update period.
const DefaultTickInterval = 100 * time.Millisecond

// Manager owns all maps and drives their updates from a single goroutine.
// It implements movement.MapService.
type Manager struct {
	mu   sync.RWMutex
	maps map[uint32]*Map

	interval  time.Duration
	tickCount atomic.Uint64
}

// NewManager creates maps for mapIDs. interval <= 0 uses DefaultTickInterval.
func NewManager(interval time.Duration, mapIDs ...uint32) *Manager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	m := &Manager{
		maps:     make(map[uint32]*Map, len(mapIDs)),
		interval: interval,
	}
	for _, id := range mapIDs {
		m.maps[id] = NewMap(id)
	}
	return m
}

// CreateMap adds a map if it does not exist yet and returns it.
func (m *Manager) CreateMap(id uint32) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mp, ok := m.maps[id]; ok {
		return mp
	}
	mp := NewMap(id)
	m.maps[id] = mp
	return mp
}

// Map returns the map with id.
func (m *Manager) Map(id uint32) (*Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[id]
	if !ok {
		return nil, fmt.Errorf("map %d: %w", id, ErrMapNotFound)
	}
	return mp, nil
}

// MapIDs returns ids of all maps in ascending order.
func (m *Manager) MapIDs() []uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint32, 0, len(m.maps))
	for id := range m.maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EnsureGridLoaded loads the grid at (x, y) on mapID. Called from the tick.
func (m *Manager) EnsureGridLoaded(mapID uint32, x, y float64) error {
	mp, err := m.Map(mapID)
	if err != nil {
		return err
	}
	if _, err := mp.LoadGrid(x, y); err != nil {
		return err
	}
	return nil
}

// AddCreature places a creature on its map.
func (m *Manager) AddCreature(c *unit.Creature) error {
	mp, err := m.Map(c.MapID())
	if err != nil {
		return fmt.Errorf("adding creature %d: %w", c.GUID(), err)
	}
	return mp.AddCreature(c)
}

// AddPlayer places a player on its map and installs the transfer hook.
func (m *Manager) AddPlayer(p *unit.Player) error {
	mp, err := m.Map(p.MapID())
	if err != nil {
		return fmt.Errorf("adding player %d: %w", p.GUID(), err)
	}
	if err := mp.AddPlayer(p); err != nil {
		return err
	}
	p.SetTransfer(m.TransferPlayer)
	return nil
}

// TransferPlayer moves p to another map. Runs inside the tick.
func (m *Manager) TransferPlayer(p *unit.Player, mapID uint32, pos mgl64.Vec3, _ float64) bool {
	to, err := m.Map(mapID)
	if err != nil {
		slog.Warn("transfer to unknown map", "player", p.Name(), "map", mapID)
		return false
	}
	if _, err := to.LoadGrid(pos.X(), pos.Y()); err != nil {
		slog.Warn("transfer target outside map", "player", p.Name(), "map", mapID, "error", err)
		return false
	}

	if from, err := m.Map(p.MapID()); err == nil {
		if err := from.RemovePlayer(p.GUID()); err != nil {
			slog.Warn("transferring player not on its map", "player", p.Name(), "error", err)
		}
	}
	p.SetMap(mapID)
	to.players[p.GUID()] = p
	to.transferTick[p.GUID()] = m.tickCount.Load()

	slog.Debug("player transferred", "player", p.Name(), "map", mapID)
	return true
}

// FindCreature searches every map for guid. Must run inside the tick.
func (m *Manager) FindCreature(guid uint64) (*unit.Creature, bool) {
	for _, id := range m.MapIDs() {
		mp, _ := m.Map(id)
		if c, ok := mp.Creature(guid); ok {
			return c, true
		}
	}
	return nil, false
}

// FindPlayer searches every map for guid. Must run inside the tick.
func (m *Manager) FindPlayer(guid uint64) (*unit.Player, bool) {
	for _, id := range m.MapIDs() {
		mp, _ := m.Map(id)
		if p, ok := mp.Player(guid); ok {
			return p, true
		}
	}
	return nil, false
}

// Do runs fn inside the next tick of the first map, with access to the whole world.
func (m *Manager) Do(ctx context.Context, fn func(*Manager)) error {
	ids := m.MapIDs()
	if len(ids) == 0 {
		return ErrMapNotFound
	}
	mp, _ := m.Map(ids[0])
	return mp.Do(ctx, func(*Map) { fn(m) })
}

// Update ticks all maps in id order.
func (m *Manager) Update(diff uint32) {
	tick := m.tickCount.Add(1)
	for _, id := range m.MapIDs() {
		mp, _ := m.Map(id)
		mp.worldTick = tick
		mp.Update(diff)
	}
}

// TickCount returns the number of world ticks started so far.
func (m *Manager) TickCount() uint64 {
	return m.tickCount.Load()
}

// Start runs the update loop (blocks until context is canceled).
// Maps refuse Do once it returns; a manager is started once.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("world update loop started", "interval", m.interval, "maps", len(m.MapIDs()))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("world update loop stopping")
			for _, id := range m.MapIDs() {
				mp, _ := m.Map(id)
				mp.stop()
			}
			return ctx.Err()

		case now := <-ticker.C:
			diff := uint32(now.Sub(last).Milliseconds())
			last = now
			m.Update(diff)
		}
	}
}
