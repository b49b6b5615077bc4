package chat

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathgen/internal/battleground"
	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/spawn"
	"github.com/udisondev/pathgen/internal/taxi"
	"github.com/udisondev/pathgen/internal/testutil"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/waypoint"
	"github.com/udisondev/pathgen/internal/world"
)

type sink struct {
	msgs []string
	sent bool
}

func (s *sink) SendSysMessage(msg string)     { s.msgs = append(s.msgs, msg) }
func (s *sink) SetSentErrorMessage(sent bool) { s.sent = sent }

func TestSendErrorMessage(t *testing.T) {
	s := &sink{}
	SendErrorMessage(s, "nope")

	assert.Equal(t, []string{"nope"}, s.msgs)
	assert.True(t, s.sent)
}

func TestGetString(t *testing.T) {
	en := NewHandler(&bytes.Buffer{}, LocaleEnUS, 0)
	ru := NewHandler(&bytes.Buffer{}, LocaleRuRU, 0)

	assert.Equal(t, "Player is not in flight.", GetString(en, StrNoFlight))
	assert.Equal(t, "Игрок не в полёте.", GetString(ru, StrNoFlight))
	assert.Equal(t, GetString(en, StrNoArena), GetString(ru, StrNoArena), "missing ruRU string falls back to enUS")
	assert.Empty(t, GetString(en, StringID(9999)))
}

type fixture struct {
	world  *world.Manager
	table  *Table
	out    *bytes.Buffer
	h      *Handler
	player *unit.Player
	arena  *battleground.NagrandArena
	spawns *spawn.Manager
}

type spawnList []model.Spawn

func (l spawnList) LoadSpawns(context.Context) ([]model.Spawn, error) { return l, nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	w := world.NewManager(5*time.Millisecond, 0, 1)

	store := waypoint.NewStore(nil)
	require.NoError(t, store.Publish([]*model.WaypointPath{
		model.NewWaypointPath(5, []model.WaypointNode{
			{ID: 1, Pos: mgl64.Vec3{1000, 1000, 0}, EventChance: 100},
			{ID: 2, Pos: mgl64.Vec3{1100, 1000, 0}, EventChance: 100},
		}),
	}))
	spawns := spawn.NewManager(spawnList{{
		ID: 7, Entry: 1, Name: "Guard", MapID: 0,
		Loc: model.NewLocation(990, 1000, 0, 0), PathID: 5, Repeating: true,
	}}, w, store, nil)
	require.NoError(t, spawns.LoadSpawns(context.Background()))
	require.NoError(t, spawns.SpawnAll())

	taxiSvc := taxi.NewService(nil, w, nil)
	taxiSvc.SetTables(taxi.NewTables(
		[]model.TaxiStation{
			{ID: 1, Name: "A", MapID: 0, Pos: mgl64.Vec3{0, 0, 50}},
			{ID: 2, Name: "B", MapID: 0, Pos: mgl64.Vec3{3000, 0, 50}},
		},
		[]model.TaxiLeg{{ID: 10, From: 1, To: 2, Cost: 25, Nodes: model.TaxiPath{
			{MapID: 0, Pos: mgl64.Vec3{0, 0, 50}},
			{MapID: 0, Pos: mgl64.Vec3{1500, 0, 50}},
			{MapID: 0, Pos: mgl64.Vec3{3000, 0, 50}},
		}}},
	))

	p := unit.NewPlayer(2, "Rider", 1, model.NewLocation(500, 500, 0, 0), 100)
	require.NoError(t, w.AddPlayer(p))

	na := battleground.NewNagrandArena()
	require.NoError(t, na.SetupBattleground())

	testutil.StartWorld(t, w)

	out := &bytes.Buffer{}
	return &fixture{
		world: w,
		table: NewTable(Deps{
			World:   w,
			Taxi:    taxiSvc,
			Spawns:  spawns,
			Respawn: spawn.NewRespawnTaskManager(spawns, w),
			Arena:   na,
		}),
		out:    out,
		h:      NewHandler(out, LocaleEnUS, p.GUID()),
		player: p,
		arena:  na,
		spawns: spawns,
	}
}

func (f *fixture) exec(t *testing.T, line string) error {
	t.Helper()
	f.out.Reset()
	return f.table.Execute(testutil.ContextWithTimeout(t, 2*time.Second), f.h, line)
}

// inTick runs fn inside the world loop.
func (f *fixture) inTick(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, f.world.Do(testutil.ContextWithTimeout(t, 2*time.Second), func(*world.Manager) { fn() }))
}

func TestTable_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	err := f.exec(t, "fly away")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, "Unknown command: fly\n", f.out.String())
	assert.True(t, f.h.HasSentErrorMessage())
}

func TestTable_BadQuoting(t *testing.T) {
	f := newFixture(t)

	assert.Error(t, f.exec(t, `wp show "7`))
	assert.True(t, f.h.HasSentErrorMessage())
}

func TestTable_EmptyLine(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.exec(t, "   "))
	assert.Empty(t, f.out.String())
}

func TestTable_Usage(t *testing.T) {
	f := newFixture(t)

	err := f.exec(t, "wp show")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, "Usage: wp show|pause|resume <guid> [ms]\n", f.out.String())
}

func TestWaypointCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.exec(t, "wp pause 7"))
	assert.Contains(t, f.out.String(), "paused")
	f.inTick(t, func() {
		c, _ := f.world.FindCreature(7)
		g, ok := c.WaypointMovement()
		require.True(t, ok)
		assert.True(t, g.Stalled())
	})

	require.NoError(t, f.exec(t, "wp show 7"))
	assert.Contains(t, f.out.String(), "path 5")
	assert.Contains(t, f.out.String(), "stalled true")

	require.NoError(t, f.exec(t, "WP resume 7 500"))
	f.inTick(t, func() {
		c, _ := f.world.FindCreature(7)
		g, _ := c.WaypointMovement()
		assert.False(t, g.Stalled())
	})

	err := f.exec(t, "wp show 99")
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, "Creature 99 not found.\n", f.out.String())
}

func TestGridCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.exec(t, "grid 1 100 -100"))
	assert.Contains(t, f.out.String(), "Map 1 grid")

	assert.ErrorIs(t, f.exec(t, "grid 1 99999 0"), world.ErrInvalidCoord)
	assert.ErrorIs(t, f.exec(t, "grid 42 0 0"), world.ErrMapNotFound)
	assert.ErrorIs(t, f.exec(t, "grid 1 x 0"), ErrUsage)
}

func TestTaxiCommands(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.exec(t, "taxi skip"), ErrCommandFailed)
	assert.ErrorIs(t, f.exec(t, "taxi go 1"), ErrUsage)

	require.NoError(t, f.exec(t, "taxi go 1 2"))
	assert.Contains(t, f.out.String(), "Flight started, 3 nodes, cost 25.")

	f.inTick(t, func() {
		assert.Equal(t, uint32(0), f.player.MapID(), "teleported to the station map")
		assert.True(t, f.player.IsInFlight())
		assert.Equal(t, int64(75), f.player.Money())
	})

	require.NoError(t, f.exec(t, "taxi skip"))
	assert.Contains(t, f.out.String(), "Skipped to node")

	require.NoError(t, f.exec(t, "taxi cancel"))
	f.inTick(t, func() {
		assert.False(t, f.player.IsInFlight())
	})
}

func TestNpcCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.exec(t, "npc despawn 7 30"))
	assert.Contains(t, f.out.String(), "Creature 7 despawned.")
	assert.Contains(t, f.out.String(), "respawn in 30s")
	assert.Equal(t, 0, f.spawns.LiveCount())

	assert.ErrorIs(t, f.exec(t, "npc despawn 7"), ErrCommandFailed)

	require.NoError(t, f.exec(t, "npc respawn 7"))
	assert.Equal(t, 1, f.spawns.LiveCount())
}

func TestArenaCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.exec(t, "arena prepare"))
	assert.Equal(t, "Arena Nagrand Arena: WAIT_JOIN.\n", f.out.String())

	require.NoError(t, f.exec(t, "arena begin"))
	assert.Equal(t, battleground.StatusInProgress, f.arena.Status())

	require.NoError(t, f.exec(t, "arena trigger 5006"))
	f.inTick(t, func() {
		assert.Equal(t, mgl64.Vec3{4054.15, 2923.7, 13.4}, f.player.Position())
	})

	require.NoError(t, f.exec(t, "arena states"))
	assert.Contains(t, f.out.String(), "2577 = 1")
}

func TestTaxiGoWhileInFlight(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.exec(t, "taxi go 1 2"))

	assert.ErrorIs(t, f.exec(t, "taxi go 2 1"), taxi.ErrAlreadyInFlight)
	f.inTick(t, func() {
		assert.True(t, f.player.IsInFlight())
		assert.Less(t, f.player.Position().X(), 1500.0, "not moved to the other station")
		assert.Equal(t, int64(75), f.player.Money())
	})
}

func TestNpcDespawnBadDelay(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.exec(t, "npc despawn 7 soon"), ErrUsage)
	assert.Equal(t, 1, f.spawns.LiveCount(), "creature kept on bad arguments")
	assert.NotContains(t, f.out.String(), "despawned")
}

func TestTable_ExpiredContextSkipsCommand(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.table.Execute(ctx, f.h, "npc despawn 7")
	assert.ErrorIs(t, err, context.Canceled)

	f.inTick(t, func() {})
	assert.Equal(t, 1, f.spawns.LiveCount())
}
