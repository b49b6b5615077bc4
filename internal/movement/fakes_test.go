package movement

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

// fakeUnit is a minimal host. Spline motion is simulated with spline.MoveSpline.
type fakeUnit struct {
	guid   uint64
	name   string
	mapID  uint32
	pos    mgl64.Vec3
	orient float64
	state  model.UnitState
	speed  float64

	spl       *spline.MoveSpline
	launches  []spline.Init
	stops     int
	teleports []mgl64.Vec3

	onArrive func()
}

func (u *fakeUnit) GUID() uint64         { return u.guid }
func (u *fakeUnit) Name() string         { return u.name }
func (u *fakeUnit) MapID() uint32        { return u.mapID }
func (u *fakeUnit) Position() mgl64.Vec3 { return u.pos }
func (u *fakeUnit) Orientation() float64 { return u.orient }
func (u *fakeUnit) HasUnitState(s model.UnitState) bool {
	return u.state.Has(s)
}
func (u *fakeUnit) AddUnitState(s model.UnitState)   { u.state |= s }
func (u *fakeUnit) ClearUnitState(s model.UnitState) { u.state &^= s }

func (u *fakeUnit) NearTeleportTo(pos mgl64.Vec3, o float64) {
	u.spl = nil
	u.pos = pos
	u.orient = o
	u.teleports = append(u.teleports, pos)
}

func (u *fakeUnit) LaunchSpline(init spline.Init) {
	u.launches = append(u.launches, init)
	v := init.Velocity
	if v == 0 {
		v = u.speed
	}
	u.spl = spline.New(u.pos, init, v)
}

func (u *fakeUnit) StopMoving() {
	u.stops++
	if u.spl != nil {
		u.pos = u.spl.Position()
	}
	u.spl = nil
}

func (u *fakeUnit) SplineFinalized() bool {
	return u.spl == nil || u.spl.Finalized()
}

func (u *fakeUnit) CurrentWaypointIndex() int {
	if u.spl == nil {
		return 0
	}
	return u.spl.CurrentPathIdx()
}

// advance moves the spline and reports arrival like a real host does.
func (u *fakeUnit) advance(diff uint32) {
	if u.spl == nil || u.spl.Finalized() {
		return
	}
	arrived := u.spl.Update(diff)
	u.pos = u.spl.Position()
	if arrived && u.onArrive != nil {
		u.onArrive()
	}
}

func (u *fakeUnit) lastLaunchTarget() mgl64.Vec3 {
	l := u.launches[len(u.launches)-1]
	return l.Points[len(l.Points)-1]
}

type fakeCreature struct {
	fakeUnit
	alive   bool
	pathID  uint32
	home    *model.Location
	reached []uint32
	informs []uint32
}

func newFakeCreature(pathID uint32, pos mgl64.Vec3) *fakeCreature {
	return &fakeCreature{
		fakeUnit: fakeUnit{guid: 1, name: "Guard", mapID: 1, pos: pos, speed: 10},
		alive:    true,
		pathID:   pathID,
	}
}

func (c *fakeCreature) IsAlive() bool                    { return c.alive }
func (c *fakeCreature) WaypointPathID() uint32           { return c.pathID }
func (c *fakeCreature) SetHomePosition(l model.Location) { c.home = &l }
func (c *fakeCreature) UpdateWaypointID(n uint32)        { c.reached = append(c.reached, n) }
func (c *fakeCreature) MovementInform(_ Kind, n uint32) {
	c.informs = append(c.informs, n)
}

type fakePlayer struct {
	fakeUnit
	taxiFlight   bool
	destinations int
	routeCleared bool
	crossMaps    []uint32

	// manual spline control for flight tests
	manual  bool
	idx     int
	splDone bool
}

func newFakePlayer(mapID uint32) *fakePlayer {
	return &fakePlayer{
		fakeUnit: fakeUnit{guid: 2, name: "Rider", mapID: mapID, speed: 32},
		manual:   true,
	}
}

func (p *fakePlayer) CurrentWaypointIndex() int {
	if p.manual {
		return p.idx
	}
	return p.fakeUnit.CurrentWaypointIndex()
}

func (p *fakePlayer) SplineFinalized() bool {
	if p.manual {
		return p.splDone
	}
	return p.fakeUnit.SplineFinalized()
}

func (p *fakePlayer) TeleportTo(mapID uint32, pos mgl64.Vec3, o float64) bool {
	p.mapID = mapID
	p.crossMaps = append(p.crossMaps, mapID)
	p.NearTeleportTo(pos, o)
	return true
}

func (p *fakePlayer) SetTaxiFlight(on bool) { p.taxiFlight = on }
func (p *fakePlayer) NextTaxiDestination()  { p.destinations++ }
func (p *fakePlayer) ClearTaxiRoute()       { p.routeCleared = true }
func (p *fakePlayer) HasTaxiRoute() bool    { return !p.routeCleared }

type fakeStore map[uint32]*model.WaypointPath

func (s fakeStore) WaypointPath(id uint32) (*model.WaypointPath, bool) {
	p, ok := s[id]
	return p, ok
}

type firedEvent struct {
	id        uint32
	departure bool
}

type fakeDispatcher struct {
	fired   []firedEvent
	journal *[]string
}

func (d *fakeDispatcher) Fire(id uint32, _ EventTarget, departure bool) {
	d.fired = append(d.fired, firedEvent{id: id, departure: departure})
	if d.journal != nil {
		kind := "arr"
		if departure {
			kind = "dep"
		}
		*d.journal = append(*d.journal, fmt.Sprintf("%s:%d", kind, id))
	}
}

func (d *fakeDispatcher) count(id uint32) int {
	n := 0
	for _, e := range d.fired {
		if e.id == id {
			n++
		}
	}
	return n
}

type fakeTaxi struct {
	trip    *model.TaxiTrip
	debits  []int32
	journal *[]string
}

func (t *fakeTaxi) Trip(PlayerHost) (*model.TaxiTrip, bool) {
	return t.trip, t.trip != nil
}

func (t *fakeTaxi) Debit(_ PlayerHost, cost int32) {
	t.debits = append(t.debits, cost)
	if t.journal != nil {
		*t.journal = append(*t.journal, fmt.Sprintf("debit:%d", cost))
	}
}

var errGridBusy = errors.New("grid busy")

type fakeMaps struct {
	calls []uint32 // generator node at call time
	fail  int      // number of calls to fail
	node  func() uint32
}

func (m *fakeMaps) EnsureGridLoaded(uint32, float64, float64) error {
	n := uint32(0)
	if m.node != nil {
		n = m.node()
	}
	m.calls = append(m.calls, n)
	if m.fail > 0 {
		m.fail--
		return errGridBusy
	}
	return nil
}

// twoMapTrip builds nodes 0..9 on map 1 and 10..19 on map 2.
func twoMapTrip() *model.TaxiTrip {
	nodes := make(model.TaxiPath, 20)
	for i := range nodes {
		m := uint32(1)
		if i >= 10 {
			m = 2
		}
		nodes[i] = model.TaxiNode{
			PathID:           7,
			Index:            uint32(i),
			MapID:            m,
			Pos:              mgl64.Vec3{float64(i) * 100, 0, 50},
			ArrivalEventID:   uint32(1000 + i),
			DepartureEventID: uint32(2000 + i),
		}
	}
	return &model.TaxiTrip{
		Nodes:    nodes,
		Switches: []model.PathSwitch{{PathIndex: 10, Cost: 50}},
	}
}
