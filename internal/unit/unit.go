// Package unit implements the movable world entities: creatures and players.
//
// Юниты принадлежат карте и обновляются только из её тика, поэтому без мьютексов.
// Запросы из других горутин идут через world.Map.Post.
package unit

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

// Default movement speeds, yards per second.
const (
	DefaultWalkSpeed = 2.5
	DefaultRunSpeed  = 7.0
	DefaultFlySpeed  = 7.0
)

// Unit is the common movable part of creatures and players.
type Unit struct {
	guid  uint64
	name  string
	mapID uint32
	loc   model.Location
	state model.UnitState

	speeds [3]float64 // indexed by spline.Mode
	spline *spline.MoveSpline
	lastWP int // path index reached by the last dropped spline

	observer Observer

	// хуки владельца (Creature/Player) → MotionMaster
	onArrived    func()
	onTeleported func()
}

func newUnit(guid uint64, name string, mapID uint32, loc model.Location) *Unit {
	return &Unit{
		guid:   guid,
		name:   name,
		mapID:  mapID,
		loc:    loc,
		speeds: [3]float64{DefaultWalkSpeed, DefaultRunSpeed, DefaultFlySpeed},
	}
}

func (u *Unit) GUID() uint64 { return u.guid }

func (u *Unit) Name() string { return u.name }

func (u *Unit) MapID() uint32 { return u.mapID }

func (u *Unit) Position() mgl64.Vec3 { return u.loc.Pos }

func (u *Unit) Orientation() float64 { return u.loc.Orientation }

// Location returns position and orientation together.
func (u *Unit) Location() model.Location { return u.loc }

// SetObserver attaches a motion event sink. nil detaches.
func (u *Unit) SetObserver(o Observer) { u.observer = o }

// Speed returns the unit's base speed for mode.
func (u *Unit) Speed(mode spline.Mode) float64 {
	if int(mode) >= len(u.speeds) {
		return DefaultRunSpeed
	}
	return u.speeds[mode]
}

// SetSpeed changes the base speed for mode. Non-positive values are ignored.
func (u *Unit) SetSpeed(mode spline.Mode, v float64) {
	if v <= 0 || int(mode) >= len(u.speeds) {
		return
	}
	u.speeds[mode] = v
}

func (u *Unit) HasUnitState(s model.UnitState) bool { return u.state.Has(s) }

func (u *Unit) AddUnitState(s model.UnitState) { u.state |= s }

func (u *Unit) ClearUnitState(s model.UnitState) { u.state &^= s }

// UnitState returns the raw state mask.
func (u *Unit) UnitState() model.UnitState { return u.state }

// Relocate moves the unit without any notification. Used by map transfers and spawns.
func (u *Unit) Relocate(pos mgl64.Vec3, orientation float64) {
	u.loc = model.Location{Pos: pos, Orientation: model.NormalizeOrientation(orientation)}
}

// NearTeleportTo moves the unit inside its map. The active spline is dropped
// and the motion generator is told to re-submit.
func (u *Unit) NearTeleportTo(pos mgl64.Vec3, orientation float64) {
	u.dropSpline()
	u.Relocate(pos, orientation)
	u.publish(Event{Type: EventTeleport})
	if u.onTeleported != nil {
		u.onTeleported()
	}
}

// LaunchSpline replaces the active spline. Zero velocity means the unit's
// own speed for the spline mode.
func (u *Unit) LaunchSpline(init spline.Init) {
	velocity := init.Velocity
	if velocity <= 0 {
		velocity = u.Speed(init.Mode)
	}
	u.spline = spline.New(u.loc.Pos, init, velocity)
	u.publish(Event{
		Type:      EventSpline,
		Mode:      init.Mode.String(),
		Points:    init.Points,
		FirstNode: init.FirstPointID,
	})
}

// StopMoving freezes the unit at its interpolated position.
func (u *Unit) StopMoving() {
	if u.spline == nil {
		return
	}
	u.loc.Pos = u.spline.Position()
	u.dropSpline()
}

func (u *Unit) dropSpline() {
	if u.spline != nil {
		u.lastWP = u.spline.CurrentPathIdx()
	}
	u.spline = nil
}

// SplineFinalized reports whether there is no motion in progress.
func (u *Unit) SplineFinalized() bool {
	return u.spline == nil || u.spline.Finalized()
}

// CurrentWaypointIndex returns the path index of the last spline point reached.
// Without a spline it keeps the index the dropped one had reached.
func (u *Unit) CurrentWaypointIndex() int {
	if u.spline == nil {
		return u.lastWP
	}
	return u.spline.CurrentPathIdx()
}

// Spline returns the active spline, nil if none.
func (u *Unit) Spline() *spline.MoveSpline { return u.spline }

// IsMoving reports whether a spline is in progress.
func (u *Unit) IsMoving() bool { return !u.SplineFinalized() }

// updateSpline advances the active spline and fires the arrival hook once.
func (u *Unit) updateSpline(diff uint32) {
	if u.spline == nil || u.spline.Finalized() {
		return
	}

	arrived := u.spline.Update(diff)
	u.loc.Pos = u.spline.Position()
	u.loc.Orientation = u.spline.Orientation(u.loc.Orientation)

	if arrived {
		u.publish(Event{Type: EventArrived, FirstNode: u.spline.CurrentPathIdx()})
		if u.onArrived != nil {
			u.onArrived()
		}
	}
}

// Say broadcasts a chat line from the unit to its observer.
func (u *Unit) Say(text string) {
	u.publish(Event{Type: EventSay, Text: text})
}

func (u *Unit) publish(ev Event) {
	if u.observer == nil {
		return
	}
	ev.GUID = u.guid
	ev.Name = u.name
	ev.MapID = u.mapID
	ev.Pos = u.loc.Pos
	u.observer(ev)
}
