package spawn

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
	"github.com/udisondev/pathgen/internal/testutil"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/waypoint"
	"github.com/udisondev/pathgen/internal/world"
)

// mockSpawnRepository для тестов
type mockSpawnRepository struct {
	spawns []model.Spawn
	err    error
}

func (r *mockSpawnRepository) LoadSpawns(context.Context) ([]model.Spawn, error) {
	return r.spawns, r.err
}

func testSpawn(id uint64, pathID uint32) model.Spawn {
	return model.Spawn{
		ID:        id,
		Entry:     1000 + uint32(id),
		Name:      "Patrol",
		MapID:     1,
		Loc:       model.Location{Pos: mgl64.Vec3{100, 100, 0}},
		PathID:    pathID,
		Repeating: true,
	}
}

func newTestManager(t *testing.T, spawns ...model.Spawn) (*Manager, *world.Manager) {
	t.Helper()

	store := waypoint.NewStore(nil)
	err := store.Publish([]*model.WaypointPath{
		model.NewWaypointPath(5, []model.WaypointNode{
			{ID: 1, Pos: mgl64.Vec3{110, 100, 0}, EventChance: 100},
			{ID: 2, Pos: mgl64.Vec3{120, 100, 0}, EventChance: 100},
		}),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	w := world.NewManager(0, 0, 1)
	mgr := NewManager(&mockSpawnRepository{spawns: spawns}, w, store, nil)
	if err := mgr.LoadSpawns(context.Background()); err != nil {
		t.Fatalf("LoadSpawns() error = %v", err)
	}
	return mgr, w
}

func TestManager_LoadSpawns(t *testing.T) {
	mgr, _ := newTestManager(t, testSpawn(1, 0), testSpawn(2, 5))

	if mgr.SpawnCount() != 2 {
		t.Errorf("SpawnCount() = %d, want 2", mgr.SpawnCount())
	}
	s, ok := mgr.GetSpawn(2)
	if !ok {
		t.Fatal("GetSpawn(2) returned false")
	}
	if s.PathID != 5 {
		t.Errorf("spawn.PathID = %d, want 5", s.PathID)
	}
	if _, ok := mgr.GetSpawn(99); ok {
		t.Error("GetSpawn(99) returned true for unknown spawn")
	}
}

func TestManager_LoadSpawnsError(t *testing.T) {
	mgr := NewManager(&mockSpawnRepository{err: testutil.ErrSimulated}, world.NewManager(0, 1), nil, nil)

	err := mgr.LoadSpawns(context.Background())
	if !errors.Is(err, testutil.ErrSimulated) {
		t.Fatalf("LoadSpawns() error = %v, want %v", err, testutil.ErrSimulated)
	}
}

func TestManager_DoSpawn(t *testing.T) {
	mgr, w := newTestManager(t, testSpawn(1, 5))
	s, _ := mgr.GetSpawn(1)

	var events []unit.Event
	mgr.SetObserver(func(ev unit.Event) { events = append(events, ev) })

	c, err := mgr.DoSpawn(s)
	if err != nil {
		t.Fatalf("DoSpawn() error = %v", err)
	}

	if c.GUID() != 1 {
		t.Errorf("GUID() = %d, want spawn id 1", c.GUID())
	}
	if got, ok := w.FindCreature(1); !ok || got != c {
		t.Error("creature not found in world")
	}
	g, ok := c.WaypointMovement()
	if !ok {
		t.Fatalf("active generator = %s, want waypoint", c.Motion().Kind())
	}
	if g.PathID() != 5 || !g.Repeating() {
		t.Errorf("generator path=%d repeating=%v, want 5/true", g.PathID(), g.Repeating())
	}
	if len(events) == 0 {
		t.Error("observer received no events")
	}

	if _, err := mgr.DoSpawn(s); !errors.Is(err, ErrAlreadySpawned) {
		t.Errorf("second DoSpawn() error = %v, want ErrAlreadySpawned", err)
	}
}

func TestManager_DoSpawnWithoutPath(t *testing.T) {
	mgr, _ := newTestManager(t, testSpawn(1, 0))
	s, _ := mgr.GetSpawn(1)

	c, err := mgr.DoSpawn(s)
	if err != nil {
		t.Fatalf("DoSpawn() error = %v", err)
	}
	if c.Motion().Kind() != movement.KindIdle {
		t.Errorf("Kind() = %s, want idle", c.Motion().Kind())
	}
}

func TestManager_DoSpawnUnknownMap(t *testing.T) {
	s := testSpawn(1, 0)
	s.MapID = 42
	mgr, _ := newTestManager(t, s)

	if _, err := mgr.DoSpawn(s); !errors.Is(err, world.ErrMapNotFound) {
		t.Fatalf("DoSpawn() error = %v, want ErrMapNotFound", err)
	}
	if mgr.LiveCount() != 0 {
		t.Errorf("LiveCount() = %d, want 0", mgr.LiveCount())
	}
}

func TestManager_Despawn(t *testing.T) {
	mgr, w := newTestManager(t, testSpawn(1, 5))
	if err := mgr.SpawnAll(); err != nil {
		t.Fatalf("SpawnAll() error = %v", err)
	}
	c, _ := mgr.Creature(1)

	if !mgr.Despawn(1) {
		t.Fatal("Despawn(1) = false")
	}
	if _, ok := w.FindCreature(1); ok {
		t.Error("creature still in world")
	}
	if c.Motion().Kind() != movement.KindIdle {
		t.Errorf("movement not finalized: %s", c.Motion().Kind())
	}
	if mgr.Despawn(1) {
		t.Error("second Despawn(1) = true")
	}
}

func TestManager_Respawn(t *testing.T) {
	mgr, w := newTestManager(t, testSpawn(1, 5))
	if err := mgr.SpawnAll(); err != nil {
		t.Fatalf("SpawnAll() error = %v", err)
	}
	old, _ := mgr.Creature(1)

	c, err := mgr.Respawn(1)
	if err != nil {
		t.Fatalf("Respawn() error = %v", err)
	}
	if c == old {
		t.Error("Respawn() returned the old creature")
	}
	if got, _ := w.FindCreature(1); got != c {
		t.Error("world holds the old creature")
	}

	if _, err := mgr.Respawn(77); !errors.Is(err, ErrSpawnNotFound) {
		t.Errorf("Respawn(77) error = %v, want ErrSpawnNotFound", err)
	}
}

func TestManager_SpawnAll(t *testing.T) {
	bad := testSpawn(3, 0)
	bad.MapID = 42
	mgr, _ := newTestManager(t, testSpawn(1, 0), testSpawn(2, 5), bad)

	err := mgr.SpawnAll()
	if err == nil {
		t.Fatal("SpawnAll() error = nil, want error for spawn on unknown map")
	}
	if mgr.LiveCount() != 2 {
		t.Errorf("LiveCount() = %d, want 2", mgr.LiveCount())
	}

	// повторный вызов не дублирует существующих
	_ = mgr.SpawnAll()
	if mgr.LiveCount() != 2 {
		t.Errorf("LiveCount() after second SpawnAll = %d, want 2", mgr.LiveCount())
	}
}
