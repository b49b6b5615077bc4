package unit

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
)

// TransferFunc moves a player to another map. Returns false if the target map
// does not exist; the player must stay untouched then.
type TransferFunc func(p *Player, mapID uint32, pos mgl64.Vec3, orientation float64) bool

// Player is a player unit. It implements movement.PlayerHost.
type Player struct {
	*Unit

	money      int64
	taxiRoute  []uint32 // flight-master node ids, route[0] is where the player currently is
	taxiFlight bool
	transfer   TransferFunc

	motion *movement.MotionMaster[movement.PlayerHost]
}

// NewPlayer creates a player at loc.
func NewPlayer(guid uint64, name string, mapID uint32, loc model.Location, money int64) *Player {
	p := &Player{
		Unit:  newUnit(guid, name, mapID, loc),
		money: money,
	}
	p.motion = movement.NewMotionMaster[movement.PlayerHost](p)
	p.motion.SetObserver(p.generatorChanged)
	p.onArrived = p.motion.SplineArrived
	p.onTeleported = p.motion.Teleported
	return p
}

// SetTransfer installs the world hook used for cross-map teleports.
func (p *Player) SetTransfer(fn TransferFunc) { p.transfer = fn }

func (p *Player) Money() int64 { return p.money }

func (p *Player) HasEnoughMoney(amount int64) bool { return p.money >= amount }

// ModifyMoney adds delta; the balance never drops below zero.
func (p *Player) ModifyMoney(delta int64) {
	p.money += delta
	if p.money < 0 {
		p.money = 0
	}
}

// SetTaxiRoute stores the flight-master nodes of a trip.
func (p *Player) SetTaxiRoute(route []uint32) {
	p.taxiRoute = append(p.taxiRoute[:0], route...)
}

// TaxiRoute returns a copy of the remaining route.
func (p *Player) TaxiRoute() []uint32 {
	out := make([]uint32, len(p.taxiRoute))
	copy(out, p.taxiRoute)
	return out
}

// NextTaxiDestination drops the departed flight master from the route.
func (p *Player) NextTaxiDestination() {
	if len(p.taxiRoute) > 0 {
		p.taxiRoute = p.taxiRoute[1:]
	}
}

func (p *Player) ClearTaxiRoute() { p.taxiRoute = nil }

func (p *Player) HasTaxiRoute() bool { return len(p.taxiRoute) > 0 }

func (p *Player) SetTaxiFlight(on bool) { p.taxiFlight = on }

// IsInFlight reports whether the player is riding a taxi.
func (p *Player) IsInFlight() bool { return p.taxiFlight }

// Motion returns the player's generator stack.
func (p *Player) Motion() *movement.MotionMaster[movement.PlayerHost] {
	return p.motion
}

// FlightMovement returns the active flight generator, if any.
func (p *Player) FlightMovement() (*movement.FlightPathGenerator, bool) {
	g, ok := p.motion.Top().(*movement.FlightPathGenerator)
	return g, ok
}

// TeleportTo moves the player, across maps if needed.
// A map change during a flight re-syncs the flight to the new map.
func (p *Player) TeleportTo(mapID uint32, pos mgl64.Vec3, orientation float64) bool {
	if mapID == p.mapID {
		p.NearTeleportTo(pos, orientation)
		return true
	}

	if p.transfer != nil {
		if !p.transfer(p, mapID, pos, orientation) {
			slog.Warn("player transfer rejected",
				"player", p.name,
				"from", p.mapID,
				"to", mapID)
			return false
		}
	} else {
		p.SetMap(mapID)
	}

	p.dropSpline()
	p.Relocate(pos, orientation)
	p.publish(Event{Type: EventMapChange})
	// полёт сам переводит узел на новую карту (OnTeleported)
	p.motion.Teleported()
	return true
}

// SetMap changes the map id. Only the world transfer hook calls this.
func (p *Player) SetMap(mapID uint32) { p.mapID = mapID }

// Update advances the spline, the active generator and, for flights,
// performs the crossing to the next map when a sub-path is finished.
func (p *Player) Update(diff uint32) {
	p.updateSpline(diff)
	p.motion.Update(diff)
	p.crossMapIfNeeded()
}

func (p *Player) crossMapIfNeeded() {
	g, ok := p.FlightMovement()
	if !ok || g.HasArrived() || !p.SplineFinalized() {
		return
	}

	path := g.Path()
	end := g.PathAtMapEnd()
	if int(end) >= len(path) {
		return
	}

	next := path[end]
	if movement.IsDebugEnabled() {
		slog.Debug("taxi map crossing",
			"player", p.name,
			"from", p.mapID,
			"to", next.MapID,
			"node", end)
	}
	if !p.TeleportTo(next.MapID, next.Pos, p.loc.Orientation) {
		p.motion.Remove(movement.KindFlight)
	}
}

func (p *Player) generatorChanged(kind movement.Kind, active bool) {
	t := EventGenPop
	if active {
		t = EventGenPush
	}
	p.publish(Event{Type: t, Generator: kind.String()})
}
