package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWaypointPath_CopiesInput(t *testing.T) {
	nodes := []WaypointNode{
		{ID: 1, Pos: mgl64.Vec3{1, 1, 1}},
		{ID: 2, Pos: mgl64.Vec3{2, 2, 2}, Delay: 500},
	}
	p := NewWaypointPath(7, nodes)

	// Изменение исходного slice не должно влиять на опубликованный путь.
	nodes[0].Pos = mgl64.Vec3{99, 99, 99}

	require.Equal(t, 2, p.Len())
	assert.Equal(t, uint32(7), p.ID())
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, p.Node(0).Pos)

	out := p.Nodes()
	out[1].Delay = 0
	assert.Equal(t, uint32(500), p.Node(1).Delay)
}

func TestWaypointPath_NilIsEmpty(t *testing.T) {
	var p *WaypointPath
	assert.Equal(t, 0, p.Len())
	assert.True(t, p.Empty())
}

func TestParseWaypointMoveType(t *testing.T) {
	tests := []struct {
		in   string
		want WaypointMoveType
		ok   bool
	}{
		{"", MoveTypeWalk, true},
		{"run", MoveTypeRun, true},
		{"LAND", MoveTypeLand, true},
		{"takeoff", MoveTypeTakeOff, true},
		{"swim", MoveTypeWalk, false},
	}
	for _, tt := range tests {
		got, ok := ParseWaypointMoveType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestTaxiTrip_TotalCost(t *testing.T) {
	trip := TaxiTrip{
		FirstCost: 20,
		Switches:  []PathSwitch{{PathIndex: 10, Cost: 50}, {PathIndex: 20, Cost: 30}},
	}
	assert.Equal(t, int64(100), trip.TotalCost())
}

func TestUnitState_String(t *testing.T) {
	assert.Equal(t, "NONE", UnitState(0).String())
	assert.Equal(t, "ROAMING|IN_FLIGHT", (UnitStateRoaming | UnitStateInFlight).String())
	assert.True(t, UnitStateNotMove.Has(UnitStateRooted))
}
