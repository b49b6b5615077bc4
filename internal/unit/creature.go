package unit

import (
	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
)

// AI receives movement notifications of a creature.
type AI interface {
	MovementInform(c *Creature, kind movement.Kind, node uint32)
}

// Creature is a non-player unit. It implements movement.CreatureHost.
type Creature struct {
	*Unit

	entry          uint32
	alive          bool
	home           model.Location
	waypointPathID uint32
	lastWaypointID uint32
	ai             AI

	motion *movement.MotionMaster[movement.CreatureHost]
}

// NewCreature creates a live creature at loc. pathID is its default waypoint path (0 = none).
func NewCreature(guid uint64, entry uint32, name string, mapID uint32, loc model.Location, pathID uint32) *Creature {
	c := &Creature{
		Unit:           newUnit(guid, name, mapID, loc),
		entry:          entry,
		alive:          true,
		home:           loc,
		waypointPathID: pathID,
	}
	c.motion = movement.NewMotionMaster[movement.CreatureHost](c)
	c.motion.SetObserver(c.generatorChanged)
	c.onArrived = c.motion.SplineArrived
	c.onTeleported = c.motion.Teleported
	return c
}

func (c *Creature) Entry() uint32 { return c.entry }

func (c *Creature) IsAlive() bool { return c.alive }

// SetAlive kills or revives the creature. A dead creature stops at once;
// its waypoint generator finishes on the next update.
func (c *Creature) SetAlive(alive bool) {
	c.alive = alive
	if !alive {
		c.StopMoving()
	}
}

func (c *Creature) WaypointPathID() uint32 { return c.waypointPathID }

func (c *Creature) SetWaypointPathID(id uint32) { c.waypointPathID = id }

func (c *Creature) HomePosition() model.Location { return c.home }

func (c *Creature) SetHomePosition(loc model.Location) { c.home = loc }

// UpdateWaypointID remembers the last reached waypoint node.
func (c *Creature) UpdateWaypointID(node uint32) { c.lastWaypointID = node }

func (c *Creature) LastWaypointID() uint32 { return c.lastWaypointID }

// SetAI attaches the creature's AI. nil detaches.
func (c *Creature) SetAI(ai AI) { c.ai = ai }

func (c *Creature) MovementInform(kind movement.Kind, node uint32) {
	if c.ai != nil {
		c.ai.MovementInform(c, kind, node)
	}
}

// Motion returns the creature's generator stack.
func (c *Creature) Motion() *movement.MotionMaster[movement.CreatureHost] {
	return c.motion
}

// MoveWaypoint replaces any waypoint movement with a new generator.
// pathID 0 uses the creature's default path.
func (c *Creature) MoveWaypoint(store movement.PathStore, events movement.EventDispatcher, pathID uint32, repeating bool) *movement.WaypointGenerator {
	g := movement.NewWaypointGenerator(store, events, pathID, repeating, false)
	c.motion.Replace(g)
	return g
}

// WaypointMovement returns the active waypoint generator, if any.
func (c *Creature) WaypointMovement() (*movement.WaypointGenerator, bool) {
	g, ok := c.motion.Top().(*movement.WaypointGenerator)
	return g, ok
}

// Update advances the spline and then the active generator.
func (c *Creature) Update(diff uint32) {
	c.updateSpline(diff)
	c.motion.Update(diff)
}

func (c *Creature) generatorChanged(kind movement.Kind, active bool) {
	t := EventGenPop
	if active {
		t = EventGenPush
	}
	c.publish(Event{Type: t, Generator: kind.String()})
}
