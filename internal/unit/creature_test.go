package unit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

type pathMap map[uint32]*model.WaypointPath

func (m pathMap) WaypointPath(id uint32) (*model.WaypointPath, bool) {
	p, ok := m[id]
	return p, ok
}

type recordingAI struct {
	nodes []uint32
}

func (a *recordingAI) MovementInform(_ *Creature, kind movement.Kind, node uint32) {
	if kind == movement.KindWaypoint {
		a.nodes = append(a.nodes, node)
	}
}

func squarePath() *model.WaypointPath {
	return model.NewWaypointPath(3, []model.WaypointNode{
		{ID: 1, Pos: mgl64.Vec3{5, 0, 0}},
		{ID: 2, Pos: mgl64.Vec3{5, 5, 0}},
		{ID: 3, Pos: mgl64.Vec3{0, 5, 0}},
		{ID: 4, Pos: mgl64.Vec3{0, 0, 0}, Delay: 1000},
	})
}

func runUnit(update func(uint32), ms uint32) {
	for t := uint32(0); t < ms; t += 100 {
		update(100)
	}
}

func TestCreature_PatrolsPath(t *testing.T) {
	c := NewCreature(100, 1, "Patroller", 0, model.NewLocation(0, 0, 0, 0), 3)
	ai := &recordingAI{}
	c.SetAI(ai)

	g := c.MoveWaypoint(pathMap{3: squarePath()}, nil, 0, true)
	require.Equal(t, movement.KindWaypoint, c.Motion().Kind())
	assert.True(t, c.HasUnitState(model.UnitStateRoaming))

	// 20 ярдов периметра на скорости ходьбы 2.5 = 8 с, плюс задержка 1 с.
	runUnit(c.Update, 9500)

	assert.Equal(t, []uint32{0, 1, 2, 3}, ai.nodes)
	assert.Equal(t, uint32(3), c.LastWaypointID())
	assert.Equal(t, uint32(0), g.CurrentNode(), "looped back to the first node")

	got, ok := c.WaypointMovement()
	require.True(t, ok)
	assert.Same(t, g, got)
}

func TestCreature_OneShotSetsHome(t *testing.T) {
	c := NewCreature(100, 1, "Runner", 0, model.NewLocation(0, 0, 0, 0), 0)
	c.SetSpeed(spline.ModeWalk, 10)

	c.MoveWaypoint(pathMap{3: squarePath()}, nil, 3, false)
	runUnit(c.Update, 5000)

	assert.Equal(t, movement.KindIdle, c.Motion().Kind())
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, c.HomePosition().Pos)
	assert.False(t, c.HasUnitState(model.UnitStateRoaming))
}

func TestCreature_DeathStopsPatrol(t *testing.T) {
	c := NewCreature(100, 1, "Victim", 0, model.NewLocation(0, 0, 0, 0), 3)
	c.MoveWaypoint(pathMap{3: squarePath()}, nil, 0, true)
	runUnit(c.Update, 500)

	c.SetAlive(false)
	assert.False(t, c.IsMoving())
	c.Update(100)
	assert.Equal(t, movement.KindIdle, c.Motion().Kind())
}

func TestCreature_TeleportResubmits(t *testing.T) {
	c := NewCreature(100, 1, "Blinker", 0, model.NewLocation(0, 0, 0, 0), 3)
	var splines int
	c.SetObserver(func(ev Event) {
		if ev.Type == EventSpline {
			splines++
		}
	})
	c.MoveWaypoint(pathMap{3: squarePath()}, nil, 0, true)
	require.Equal(t, 1, splines)

	c.NearTeleportTo(mgl64.Vec3{4, -3, 0}, 0)
	c.Update(100)
	assert.Equal(t, 2, splines)
	assert.True(t, c.IsMoving())
}

func TestCreature_MissingPathPops(t *testing.T) {
	c := NewCreature(100, 1, "Lost", 0, model.NewLocation(0, 0, 0, 0), 77)
	c.MoveWaypoint(pathMap{}, nil, 0, true)
	c.Update(100)
	assert.Equal(t, movement.KindIdle, c.Motion().Kind())
}
