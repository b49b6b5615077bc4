package unit

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
)

type stubTaxi struct {
	trip *model.TaxiTrip
}

func (s *stubTaxi) Trip(movement.PlayerHost) (*model.TaxiTrip, bool) {
	return s.trip, s.trip != nil
}

func (s *stubTaxi) Debit(p movement.PlayerHost, cost int32) {
	p.(*Player).ModifyMoney(-int64(cost))
}

type stubMaps struct {
	loaded []uint32
}

func (m *stubMaps) EnsureGridLoaded(mapID uint32, _, _ float64) error {
	m.loaded = append(m.loaded, mapID)
	return nil
}

// crossMapTrip: 4 nodes on map 0, then 4 nodes on map 1, 32 yards apart.
func crossMapTrip() *model.TaxiTrip {
	var nodes model.TaxiPath
	for i := range 8 {
		m := uint32(0)
		if i >= 4 {
			m = 1
		}
		nodes = append(nodes, model.TaxiNode{
			Index: uint32(i),
			MapID: m,
			Pos:   mgl64.Vec3{float64(i%4) * 32, float64(m) * 1000, 100},
		})
	}
	return &model.TaxiTrip{
		Nodes:     nodes,
		Switches:  []model.PathSwitch{{PathIndex: 4, Cost: 30}},
		FirstCost: 20,
	}
}

func startFlight(p *Player, trip *model.TaxiTrip, maps movement.MapService) *movement.FlightPathGenerator {
	g := movement.NewFlightPathGenerator(&stubTaxi{trip: trip}, maps, nil, 0)
	p.SetTaxiRoute([]uint32{1, 2, 3})
	p.Motion().Push(g)
	return g
}

func TestPlayer_FlightAcrossMaps(t *testing.T) {
	p := NewPlayer(1, "Rider", 0, model.NewLocation(0, 0, 100, 0), 100)
	var transfers []uint32
	p.SetTransfer(func(pl *Player, mapID uint32, _ mgl64.Vec3, _ float64) bool {
		transfers = append(transfers, mapID)
		pl.SetMap(mapID)
		return true
	})
	maps := &stubMaps{}
	g := startFlight(p, crossMapTrip(), maps)

	require.True(t, p.IsInFlight())
	require.True(t, p.HasUnitState(model.UnitStateInFlight))

	// 3 отрезка по 32 ярда на скорости 32: ~3 с на первой карте.
	runUnit(p.Update, 3100)
	assert.Equal(t, []uint32{1}, transfers, "crossed to the second map")
	assert.Equal(t, uint32(1), p.MapID())
	assert.Equal(t, uint32(4), g.CurrentNode())
	assert.Equal(t, int64(70), p.Money(), "switch cost debited at the crossing")
	assert.Equal(t, []uint32{2, 3}, p.TaxiRoute())

	runUnit(p.Update, 3200)
	assert.Equal(t, movement.KindIdle, p.Motion().Kind())
	assert.False(t, p.IsInFlight())
	assert.False(t, p.HasTaxiRoute())
	assert.Equal(t, mgl64.Vec3{96, 1000, 100}, p.Position())
	assert.Equal(t, int64(70), p.Money())
	assert.Equal(t, []uint32{0, 1}, maps.loaded, "end grid preloaded once per sub-path")
}

func TestPlayer_UnexpectedTeleportResyncsFlight(t *testing.T) {
	p := NewPlayer(1, "Rider", 0, model.NewLocation(0, 0, 100, 0), 100)
	g := startFlight(p, crossMapTrip(), nil)
	runUnit(p.Update, 1100)
	require.Equal(t, uint32(1), g.CurrentNode())

	require.True(t, p.TeleportTo(1, mgl64.Vec3{0, 1000, 100}, 0))
	assert.Equal(t, uint32(4), g.CurrentNode())
	assert.True(t, p.IsMoving(), "flight re-submitted on the new map")
}

func TestPlayer_NearTeleportKeepsFlightNode(t *testing.T) {
	p := NewPlayer(1, "Rider", 0, model.NewLocation(0, 0, 100, 0), 100)
	maps := &stubMaps{}
	g := startFlight(p, crossMapTrip(), maps)
	runUnit(p.Update, 1100)
	require.Equal(t, uint32(1), g.CurrentNode())

	p.NearTeleportTo(p.Position(), 0)
	assert.True(t, p.IsMoving(), "flight re-submitted from the current node")
	assert.Equal(t, 1, p.Spline().CurrentPathIdx())

	p.Update(100)
	assert.Equal(t, uint32(1), g.CurrentNode(), "no nodes skipped")
	assert.Equal(t, uint32(0), p.MapID())

	runUnit(p.Update, 7000)
	assert.Equal(t, movement.KindIdle, p.Motion().Kind())
	assert.Equal(t, mgl64.Vec3{96, 1000, 100}, p.Position())
	assert.Equal(t, int64(70), p.Money())
}

func TestPlayer_NearTeleportSingleMapFlightLands(t *testing.T) {
	trip := crossMapTrip()
	trip.Nodes = trip.Nodes[:4]
	trip.Switches = nil
	p := NewPlayer(1, "Rider", 0, model.NewLocation(0, 0, 100, 0), 100)
	startFlight(p, trip, &stubMaps{})
	runUnit(p.Update, 1100)

	p.NearTeleportTo(p.Position(), 0)
	runUnit(p.Update, 4000)

	assert.Equal(t, movement.KindIdle, p.Motion().Kind())
	assert.False(t, p.IsInFlight())
	assert.Equal(t, mgl64.Vec3{96, 0, 100}, p.Position())
}

func TestPlayer_TransferRejectedAbortsFlight(t *testing.T) {
	p := NewPlayer(1, "Rider", 0, model.NewLocation(0, 0, 100, 0), 100)
	p.SetTransfer(func(*Player, uint32, mgl64.Vec3, float64) bool { return false })
	g := startFlight(p, crossMapTrip(), nil)

	runUnit(p.Update, 3100)

	assert.Equal(t, movement.KindIdle, p.Motion().Kind())
	assert.Equal(t, uint32(0), p.MapID())
	assert.Equal(t, g.Path()[3].Pos, p.Position(), "reset to the last node on the map")
	assert.False(t, p.IsInFlight())
}

func TestPlayer_Money(t *testing.T) {
	p := NewPlayer(1, "Payer", 0, model.Location{}, 10)
	assert.True(t, p.HasEnoughMoney(10))
	p.ModifyMoney(-25)
	assert.Zero(t, p.Money())
	assert.False(t, p.HasEnoughMoney(1))
}

func TestPlayer_TaxiRoute(t *testing.T) {
	p := NewPlayer(1, "Rider", 0, model.Location{}, 0)
	route := []uint32{5, 6}
	p.SetTaxiRoute(route)
	route[0] = 99

	assert.Equal(t, []uint32{5, 6}, p.TaxiRoute())
	p.NextTaxiDestination()
	assert.Equal(t, []uint32{6}, p.TaxiRoute())
	p.NextTaxiDestination()
	p.NextTaxiDestination()
	assert.False(t, p.HasTaxiRoute())
}
