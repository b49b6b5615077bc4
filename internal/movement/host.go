package movement

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

// EventTarget is what a node event is fired against.
type EventTarget interface {
	GUID() uint64
	Name() string
	MapID() uint32
	Position() mgl64.Vec3
}

// Host is the unit moved by a generator.
type Host interface {
	EventTarget
	Orientation() float64
	NearTeleportTo(pos mgl64.Vec3, orientation float64)
	// LaunchSpline replaces the host's active spline.
	LaunchSpline(init spline.Init)
	StopMoving()
	SplineFinalized() bool
	// CurrentWaypointIndex reports the last path index the active spline reached.
	CurrentWaypointIndex() int
	HasUnitState(s model.UnitState) bool
	AddUnitState(s model.UnitState)
	ClearUnitState(s model.UnitState)
}

// CreatureHost is a non-player unit following waypoint paths.
type CreatureHost interface {
	Host
	IsAlive() bool
	WaypointPathID() uint32
	SetHomePosition(loc model.Location)
	UpdateWaypointID(node uint32)
	MovementInform(kind Kind, node uint32)
}

// PlayerHost is a player riding a taxi.
type PlayerHost interface {
	Host
	TeleportTo(mapID uint32, pos mgl64.Vec3, orientation float64) bool
	SetTaxiFlight(on bool)
	// NextTaxiDestination drops the reached destination from the player's route.
	NextTaxiDestination()
	ClearTaxiRoute()
	HasTaxiRoute() bool
}

// PathStore resolves waypoint paths. Returned paths are shared and immutable.
type PathStore interface {
	WaypointPath(id uint32) (*model.WaypointPath, bool)
}

// TaxiService owns per-player trips and the money side of a flight.
type TaxiService interface {
	Trip(p PlayerHost) (*model.TaxiTrip, bool)
	Debit(p PlayerHost, cost int32)
}

// MapService loads grids on demand.
type MapService interface {
	EnsureGridLoaded(mapID uint32, x, y float64) error
}

// EventDispatcher runs node events.
type EventDispatcher interface {
	Fire(eventID uint32, target EventTarget, departure bool)
}
