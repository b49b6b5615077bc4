package world

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/pathgen/internal/unit"
)

// Map owns the units and loaded grids of one map.
//
// Всё, кроме Post/Do, вызывается только из тика менеджера.
type Map struct {
	id uint32

	creatures map[uint64]*unit.Creature
	players   map[uint64]*unit.Player
	grids     map[GridCoord]struct{}

	// world tick bookkeeping: a player transferred in during tick N was
	// already updated in N on its old map
	worldTick    uint64
	transferTick map[uint64]uint64

	mu    sync.Mutex
	tasks []func(*Map)

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewMap creates an empty map.
func NewMap(id uint32) *Map {
	return &Map{
		id:           id,
		creatures:    make(map[uint64]*unit.Creature),
		players:      make(map[uint64]*unit.Player),
		grids:        make(map[GridCoord]struct{}),
		transferTick: make(map[uint64]uint64),
		stopped:      make(chan struct{}),
	}
}

func (m *Map) ID() uint32 { return m.id }

// LoadGrid marks the grid containing (x, y) as loaded.
// Returns ErrInvalidCoord for coordinates outside the map.
func (m *Map) LoadGrid(x, y float64) (GridCoord, error) {
	if !IsValidMapCoord(x, y) {
		return GridCoord{}, fmt.Errorf("map %d (%.2f, %.2f): %w", m.id, x, y, ErrInvalidCoord)
	}
	gc := ComputeGridCoord(x, y)
	if !gc.IsValid() {
		return gc, fmt.Errorf("map %d grid %s: %w", m.id, gc, ErrInvalidCoord)
	}

	if _, ok := m.grids[gc]; !ok {
		m.grids[gc] = struct{}{}
		slog.Debug("grid loaded", "map", m.id, "grid", gc.String())
	}
	return gc, nil
}

// IsGridLoaded reports whether the grid containing (x, y) is loaded.
func (m *Map) IsGridLoaded(x, y float64) bool {
	_, ok := m.grids[ComputeGridCoord(x, y)]
	return ok
}

// GridCount returns the number of loaded grids.
func (m *Map) GridCount() int { return len(m.grids) }

// AddCreature places c on the map and loads its grid.
func (m *Map) AddCreature(c *unit.Creature) error {
	if _, ok := m.creatures[c.GUID()]; ok {
		return fmt.Errorf("creature %d: %w", c.GUID(), ErrUnitExists)
	}
	pos := c.Position()
	if _, err := m.LoadGrid(pos.X(), pos.Y()); err != nil {
		return fmt.Errorf("adding creature %d: %w", c.GUID(), err)
	}
	m.creatures[c.GUID()] = c
	return nil
}

// AddPlayer places p on the map and loads its grid.
func (m *Map) AddPlayer(p *unit.Player) error {
	if _, ok := m.players[p.GUID()]; ok {
		return fmt.Errorf("player %d: %w", p.GUID(), ErrUnitExists)
	}
	pos := p.Position()
	if _, err := m.LoadGrid(pos.X(), pos.Y()); err != nil {
		return fmt.Errorf("adding player %d: %w", p.GUID(), err)
	}
	m.players[p.GUID()] = p
	return nil
}

// RemoveCreature removes a creature, finalizing its movement first.
func (m *Map) RemoveCreature(guid uint64) error {
	c, ok := m.creatures[guid]
	if !ok {
		return fmt.Errorf("creature %d on map %d: %w", guid, m.id, ErrUnitNotFound)
	}
	c.Motion().Clear()
	delete(m.creatures, guid)
	return nil
}

// RemovePlayer removes a player from the map. Movement is kept: a player
// leaving through a transfer continues its flight on the next map.
func (m *Map) RemovePlayer(guid uint64) error {
	if _, ok := m.players[guid]; !ok {
		return fmt.Errorf("player %d on map %d: %w", guid, m.id, ErrUnitNotFound)
	}
	delete(m.players, guid)
	return nil
}

func (m *Map) Creature(guid uint64) (*unit.Creature, bool) {
	c, ok := m.creatures[guid]
	return c, ok
}

func (m *Map) Player(guid uint64) (*unit.Player, bool) {
	p, ok := m.players[guid]
	return p, ok
}

// Creatures returns creatures sorted by GUID.
func (m *Map) Creatures() []*unit.Creature {
	out := make([]*unit.Creature, 0, len(m.creatures))
	for _, c := range m.creatures {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *unit.Creature) int { return cmp.Compare(a.GUID(), b.GUID()) })
	return out
}

// Players returns players sorted by GUID.
func (m *Map) Players() []*unit.Player {
	out := make([]*unit.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *unit.Player) int { return cmp.Compare(a.GUID(), b.GUID()) })
	return out
}

// Post queues fn to run at the start of the next map update.
// Safe for concurrent use.
func (m *Map) Post(fn func(*Map)) {
	m.mu.Lock()
	m.tasks = append(m.tasks, fn)
	m.mu.Unlock()
}

// Do posts fn and waits until the map ran it. fn is skipped when ctx
// expires before the map gets to it, so a failed Do never runs fn later.
// Returns ErrMapStopped once the update loop has exited.
func (m *Map) Do(ctx context.Context, fn func(*Map)) error {
	select {
	case <-m.stopped:
		return fmt.Errorf("map %d: %w", m.id, ErrMapStopped)
	default:
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("map %d: %w", m.id, err)
	}

	var ran bool
	done := make(chan struct{})
	m.Post(func(mp *Map) {
		defer close(done)
		if ctx.Err() != nil {
			return
		}
		ran = true
		fn(mp)
	})

	select {
	case <-done:
		if !ran {
			return fmt.Errorf("map %d: %w", m.id, ctx.Err())
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("map %d: %w", m.id, ctx.Err())
	case <-m.stopped:
		return fmt.Errorf("map %d: %w", m.id, ErrMapStopped)
	}
}

// stop fails pending and future Do calls.
func (m *Map) stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Update runs queued tasks, then moves every unit. Units are iterated in
// GUID order so event order is stable within a tick.
func (m *Map) Update(diff uint32) {
	m.runTasks()

	for _, c := range m.Creatures() {
		c.Update(diff)
	}
	for _, p := range m.Players() {
		// игрок мог уйти на другую карту в этом же тике
		if p.MapID() != m.id {
			continue
		}
		if tick, ok := m.transferTick[p.GUID()]; ok {
			delete(m.transferTick, p.GUID())
			if tick == m.worldTick {
				continue
			}
		}
		p.Update(diff)
	}
}

func (m *Map) runTasks() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()

	for _, fn := range tasks {
		fn(m)
	}
}
