package movement

import (
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

// WaypointGenerator drives a creature along a shared waypoint path.
//
// Жизненный цикл: Initialize → Update каждый тик → Finalize.
// Прибытие в узел сообщает хост через OnArrived (MotionMaster.SplineArrived).
type WaypointGenerator struct {
	pathBase[*model.WaypointPath]

	store  PathStore
	events EventDispatcher

	pathID       uint32
	nextMoveTime TimeTracker
	arrivalDone  bool
	repeating    bool
	stalled      bool
	moveNow      bool // submit on next update regardless of arrival (resume / teleport)
	terminal     bool
	finalized    bool
}

// NewWaypointGenerator creates a generator for pathID.
// pathID 0 means "use the creature's own path" (CreatureHost.WaypointPathID).
func NewWaypointGenerator(store PathStore, events EventDispatcher, pathID uint32, repeating, stalled bool) *WaypointGenerator {
	return &WaypointGenerator{
		store:     store,
		events:    events,
		pathID:    pathID,
		repeating: repeating,
		stalled:   stalled,
	}
}

func (g *WaypointGenerator) Kind() Kind { return KindWaypoint }

func (g *WaypointGenerator) PathID() uint32 { return g.pathID }

func (g *WaypointGenerator) Repeating() bool { return g.repeating }

func (g *WaypointGenerator) Stalled() bool { return g.stalled }

func (g *WaypointGenerator) ArrivalDone() bool { return g.arrivalDone }

// NextMoveIn returns milliseconds until the generator may submit motion again.
func (g *WaypointGenerator) NextMoveIn() uint32 { return g.nextMoveTime.Remaining() }

// Terminal reports whether the path is exhausted or failed to load.
func (g *WaypointGenerator) Terminal() bool { return g.terminal }

// Path returns the bound path, nil if none is loaded.
func (g *WaypointGenerator) Path() *model.WaypointPath { return g.path }

// LoadPath binds the path from the store and starts from node 0.
func (g *WaypointGenerator) LoadPath(h CreatureHost) {
	if g.pathID == 0 {
		g.pathID = h.WaypointPathID()
	}

	path, ok := g.store.WaypointPath(g.pathID)
	if !ok || path.Empty() {
		slog.Error("waypoint path not found or empty",
			"pathID", g.pathID,
			"creature", h.Name(),
			"guid", h.GUID())
		g.path = nil
		g.terminal = true
		return
	}

	g.path = path
	g.currentNode = 0
	g.arrivalDone = false
	g.terminal = false
	g.startMoveNow(h)
}

func (g *WaypointGenerator) Initialize(h CreatureHost) {
	g.finalized = false
	g.nextMoveTime.Reset(0)
	h.AddUnitState(model.UnitStateRoaming | model.UnitStateRoamingMove)
	g.LoadPath(h)
}

// Reset continues the path from the current node after an interruption.
func (g *WaypointGenerator) Reset(h CreatureHost) {
	g.finalized = false
	if g.path == nil {
		g.Initialize(h)
		return
	}
	if g.terminal {
		return
	}

	h.AddUnitState(model.UnitStateRoaming | model.UnitStateRoamingMove)
	if !g.stalled && g.nextMoveTime.Passed() {
		g.startMoveNow(h)
	}
}

func (g *WaypointGenerator) Update(h CreatureHost, diff uint32) bool {
	if g.terminal || g.path.Empty() {
		return false
	}
	if !h.IsAlive() {
		return false
	}

	// Оглушён или прикован: стоим, но генератор не снимаем.
	if h.HasUnitState(model.UnitStateNotMove) {
		if !h.SplineFinalized() {
			h.StopMoving()
		}
		h.ClearUnitState(model.UnitStateRoamingMove)
		g.moveNow = true
		return true
	}

	if g.stalled {
		g.nextMoveTime.Update(diff)
		return true
	}

	if !g.nextMoveTime.Passed() {
		g.nextMoveTime.Update(diff)
		if !g.nextMoveTime.Passed() {
			return true
		}
		return g.startMove(h)
	}

	if h.HasUnitState(model.UnitStateStopped) {
		h.StopMoving()
		g.stop(TimeDiffNextWP)
		return true
	}

	if g.moveNow || g.arrivalDone {
		return g.startMove(h)
	}
	return true
}

func (g *WaypointGenerator) Finalize(h CreatureHost) {
	if g.finalized {
		return
	}
	g.finalized = true
	h.ClearUnitState(model.UnitStateRoaming | model.UnitStateRoamingMove)
	h.StopMoving()
	g.path = nil
}

// Pause stops submitting motion. timer 0 stalls until Resume,
// otherwise the generator resumes by itself after timer ms.
// Motion already submitted to the host is not retracted.
func (g *WaypointGenerator) Pause(timer uint32) {
	if timer == 0 {
		g.stalled = true
		return
	}
	g.stalled = false
	g.nextMoveTime.Reset(timer)
}

// Resume clears a stall. A non-zero override becomes the next move timer,
// zero submits motion on the next update.
func (g *WaypointGenerator) Resume(override uint32) {
	g.stalled = false
	if override > 0 {
		g.nextMoveTime.Reset(override)
		return
	}
	g.nextMoveTime.Reset(0)
	g.moveNow = true
}

// OnArrived is called by the host when the spline to the current node finished.
func (g *WaypointGenerator) OnArrived(h CreatureHost) {
	if g.terminal || g.path.Empty() || g.arrivalDone {
		return
	}
	g.arrivalDone = true

	node := g.path.Node(g.currentNode)

	if IsDebugEnabled() {
		slog.Debug("waypoint reached",
			"creature", h.Name(),
			"guid", h.GUID(),
			"pathID", g.pathID,
			"node", g.currentNode)
	}

	if node.EventID != 0 && g.events != nil && rand.IntN(100) < int(node.EventChance) {
		g.events.Fire(node.EventID, h, false)
	}

	g.MovementInform(h)
	h.UpdateWaypointID(g.currentNode)

	if node.Delay > 0 {
		h.ClearUnitState(model.UnitStateRoamingMove)
		g.stop(node.Delay)
	}
}

// OnTeleported invalidates arrival; motion towards the current node is
// re-submitted from the new position on the next update.
func (g *WaypointGenerator) OnTeleported(h CreatureHost) {
	if g.terminal || g.path.Empty() {
		return
	}
	g.arrivalDone = false
	g.moveNow = true
}

// MovementInform notifies the creature AI about the reached node.
func (g *WaypointGenerator) MovementInform(h CreatureHost) {
	h.MovementInform(KindWaypoint, g.currentNode)
}

func (g *WaypointGenerator) stop(ms uint32) {
	g.nextMoveTime.Reset(ms)
}

func (g *WaypointGenerator) startMoveNow(h CreatureHost) bool {
	g.nextMoveTime.Reset(0)
	return g.startMove(h)
}

// startMove advances past an arrived node and submits motion to the current one.
// Returns false when the path is exhausted.
func (g *WaypointGenerator) startMove(h CreatureHost) bool {
	if g.path.Empty() || g.terminal {
		return false
	}
	if !h.IsAlive() {
		return false
	}
	if g.stalled || !g.nextMoveTime.Passed() {
		return true
	}

	size := uint32(g.path.Len())
	if g.arrivalDone {
		last := size - 1
		if g.currentNode >= last && !g.repeating {
			node := g.path.Node(last)
			h.SetHomePosition(model.Location{Pos: node.Pos, Orientation: h.Orientation()})
			g.currentNode = size
			g.terminal = true
			return false
		}
		g.currentNode = (g.currentNode + 1) % size
		g.arrivalDone = false
		g.moveNow = true
	}

	// Двигаться нельзя: узел уже выбран, отправим позже.
	if h.HasUnitState(model.UnitStateNotMove) {
		return true
	}

	g.moveNow = false
	node := g.path.Node(g.currentNode)
	if !model.IsFinite(node.Pos) {
		slog.Warn("skipping malformed waypoint node",
			"pathID", g.pathID,
			"node", g.currentNode,
			"creature", h.Name())
		g.arrivalDone = true
		g.stop(TimeDiffNextWP)
		return true
	}

	g.arrivalDone = false
	h.AddUnitState(model.UnitStateRoamingMove)
	h.LaunchSpline(waypointSpline(g.currentNode, node))
	return true
}

func waypointSpline(index uint32, node model.WaypointNode) spline.Init {
	init := spline.Init{
		Points:       []mgl64.Vec3{node.Pos},
		FirstPointID: int(index),
		Mode:         spline.ModeWalk,
	}

	// Поворот только если у узла есть и ориентация, и задержка.
	if node.Orientation != 0 && node.Delay != 0 {
		init.Facing = node.Orientation
		init.HasFacing = true
	}

	switch node.MoveType {
	case model.MoveTypeRun:
		init.Mode = spline.ModeRun
	case model.MoveTypeLand:
		init.Mode = spline.ModeFly
		init.Animation = spline.AnimationToGround
	case model.MoveTypeTakeOff:
		init.Mode = spline.ModeFly
		init.Animation = spline.AnimationToFly
	}
	return init
}
