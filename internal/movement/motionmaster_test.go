package movement

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathgen/internal/model"
)

type countingGenerator struct {
	kind                        Kind
	inits, resets, finals, left int
	arrived, teleported         int
}

func (g *countingGenerator) Initialize(*fakeUnit) { g.inits++ }
func (g *countingGenerator) Reset(*fakeUnit)      { g.resets++ }
func (g *countingGenerator) Finalize(*fakeUnit)   { g.finals++ }
func (g *countingGenerator) Kind() Kind           { return g.kind }
func (g *countingGenerator) OnArrived(*fakeUnit)  { g.arrived++ }
func (g *countingGenerator) OnTeleported(*fakeUnit) {
	g.teleported++
}

func (g *countingGenerator) Update(*fakeUnit, uint32) bool {
	if g.left <= 0 {
		return false
	}
	g.left--
	return true
}

func TestMotionMaster_IdleBase(t *testing.T) {
	mm := NewMotionMaster(&fakeUnit{})
	assert.Equal(t, KindIdle, mm.Kind())
	assert.Equal(t, 1, mm.Len())

	mm.Update(100)
	mm.Clear()
	assert.Equal(t, 1, mm.Len(), "idle is never removed")
	assert.False(t, mm.Remove(KindIdle))
}

func TestMotionMaster_PushAndPop(t *testing.T) {
	mm := NewMotionMaster(&fakeUnit{})
	under := &countingGenerator{kind: KindWaypoint, left: 100}
	over := &countingGenerator{kind: KindFlight, left: 2}

	var changes []string
	mm.SetObserver(func(k Kind, active bool) {
		state := "off"
		if active {
			state = "on"
		}
		changes = append(changes, k.String()+":"+state)
	})

	mm.Push(under)
	mm.Push(over)
	assert.Equal(t, KindFlight, mm.Kind())
	assert.Equal(t, 1, over.inits)

	mm.Update(100)
	mm.Update(100)
	assert.Equal(t, KindFlight, mm.Kind())
	assert.Zero(t, under.resets)

	mm.Update(100)
	assert.Equal(t, KindWaypoint, mm.Kind(), "finished generator is popped")
	assert.Equal(t, 1, over.finals)
	assert.Equal(t, 1, under.resets, "interrupted generator continues")
	assert.Equal(t, []string{"WAYPOINT:on", "FLIGHT:on", "FLIGHT:off"}, changes)
}

func TestMotionMaster_Listeners(t *testing.T) {
	mm := NewMotionMaster(&fakeUnit{})
	g := &countingGenerator{kind: KindWaypoint, left: 10}

	mm.SplineArrived()
	mm.Teleported()

	mm.Push(g)
	mm.SplineArrived()
	mm.Teleported()
	assert.Equal(t, 1, g.arrived)
	assert.Equal(t, 1, g.teleported)
}

func TestMotionMaster_ReplaceAndRemove(t *testing.T) {
	mm := NewMotionMaster(&fakeUnit{})
	first := &countingGenerator{kind: KindWaypoint, left: 10}
	second := &countingGenerator{kind: KindWaypoint, left: 10}

	mm.Push(first)
	mm.Replace(second)
	assert.Equal(t, 2, mm.Len())
	assert.Equal(t, 1, first.finals)
	assert.Same(t, second, mm.Top())

	assert.True(t, mm.Remove(KindWaypoint))
	assert.Equal(t, 1, second.finals)
	assert.False(t, mm.Remove(KindWaypoint))
	assert.Equal(t, KindIdle, mm.Kind())
}

func TestMotionMaster_WaypointEndToEnd(t *testing.T) {
	nodes := []model.WaypointNode{
		{ID: 1, Pos: mgl64.Vec3{0, 0, 0}},
		{ID: 2, Pos: mgl64.Vec3{10, 0, 0}},
	}
	c := newFakeCreature(10, mgl64.Vec3{})
	mm := NewMotionMaster[CreatureHost](c)
	c.onArrive = mm.SplineArrived

	mm.Push(NewWaypointGenerator(fakeStore{10: model.NewWaypointPath(10, nodes)}, nil, 0, false, false))
	require.Equal(t, KindWaypoint, mm.Kind())

	for range 30 {
		c.advance(tick)
		mm.Update(tick)
	}

	assert.Equal(t, KindIdle, mm.Kind(), "one-shot path pops itself")
	assert.Equal(t, []uint32{0, 1}, c.reached)
	assert.False(t, c.HasUnitState(model.UnitStateRoaming))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "IDLE", KindIdle.String())
	assert.Equal(t, "WAYPOINT", KindWaypoint.String())
	assert.Equal(t, "FLIGHT", KindFlight.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}

func TestTimeTracker(t *testing.T) {
	var tt TimeTracker
	assert.True(t, tt.Passed())

	tt.Reset(250)
	assert.Equal(t, uint32(250), tt.Remaining())
	tt.Update(100)
	assert.False(t, tt.Passed())
	tt.Update(200)
	assert.True(t, tt.Passed())
	assert.Zero(t, tt.Remaining())
}

func TestEnableDebugLogging(t *testing.T) {
	defer EnableDebugLogging(false)

	EnableDebugLogging(true)
	assert.True(t, IsDebugEnabled())
	EnableDebugLogging(false)
	assert.False(t, IsDebugEnabled())
}
