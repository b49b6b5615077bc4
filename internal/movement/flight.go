package movement

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oklog/ulid/v2"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement/spline"
)

// FlightPathGenerator drives a player along a taxi trip.
//
// Путь: собственная копия игрока, может проходить через несколько карт.
// Переход между картами выполняет хост телепортом; генератор в OnTeleported
// сдвигает индекс на новую карту и заново отправляет сплайн.
type FlightPathGenerator struct {
	pathBase[model.TaxiPath]

	taxi   TaxiService
	maps   MapService
	events EventDispatcher

	tripID    ulid.ULID
	startNode uint32
	switches  []model.PathSwitch // FIFO, strictly increasing PathIndex

	endMapID          uint32
	endGridX          float64
	endGridY          float64
	preloadTargetNode uint32
	preloadDone       bool

	travelTimer TimeTracker
	loaded      bool
	aborted     bool
	finalized   bool
}

// NewFlightPathGenerator creates a generator that starts at startNode of the
// player's trip. startNode is non-zero when resuming a flight.
func NewFlightPathGenerator(taxi TaxiService, maps MapService, events EventDispatcher, startNode uint32) *FlightPathGenerator {
	return &FlightPathGenerator{
		taxi:      taxi,
		maps:      maps,
		events:    events,
		startNode: startNode,
	}
}

func (g *FlightPathGenerator) Kind() Kind { return KindFlight }

// Path returns the generator's copy of the trip nodes.
func (g *FlightPathGenerator) Path() model.TaxiPath { return g.path }

func (g *FlightPathGenerator) TripID() ulid.ULID { return g.tripID }

// PendingSwitches returns the not yet consumed path-switch markers.
func (g *FlightPathGenerator) PendingSwitches() []model.PathSwitch {
	out := make([]model.PathSwitch, len(g.switches))
	copy(out, g.switches)
	return out
}

// PreloadTargetNode returns the node index at which the end grid is preloaded.
func (g *FlightPathGenerator) PreloadTargetNode() uint32 { return g.preloadTargetNode }

// EndGrid returns the cached end of the current sub-path.
func (g *FlightPathGenerator) EndGrid() (mapID uint32, x, y float64) {
	return g.endMapID, g.endGridX, g.endGridY
}

// LoadPath copies the player's trip and validates its path-switch markers.
// Nodes with non-finite coordinates are left out of the copy; the start node
// and markers are moved to the next kept node. Markers at or before a
// non-zero start node were paid before and are dropped.
func (g *FlightPathGenerator) LoadPath(p PlayerHost) bool {
	g.switches = g.switches[:0]
	g.loaded = false
	g.path = nil
	g.currentNode = 0

	trip, ok := g.taxi.Trip(p)
	if !ok || trip == nil || len(trip.Nodes) == 0 {
		slog.Error("taxi trip unavailable",
			"player", p.Name(),
			"guid", p.GUID())
		return false
	}

	path, kept := dropNonFinite(p, trip.Nodes)
	if len(path) == 0 {
		slog.Error("taxi trip has no valid nodes",
			"player", p.Name(),
			"trip", trip.ID.String())
		return false
	}

	g.path = path
	g.tripID = trip.ID
	size := uint32(len(g.path))
	if g.startNode < uint32(len(trip.Nodes)) && kept[g.startNode] < size {
		g.currentNode = kept[g.startNode]
	} else {
		slog.Warn("flight start node out of range, starting from 0",
			"player", p.Name(),
			"startNode", g.startNode,
			"nodes", size)
	}

	var (
		lastIndex uint32
		haveLast  bool
	)
	for _, sw := range trip.Switches {
		if sw.PathIndex < uint32(len(trip.Nodes)) {
			sw.PathIndex = min(kept[sw.PathIndex], size-1)
		}
		if sw.PathIndex >= size || (haveLast && sw.PathIndex <= lastIndex) {
			slog.Warn("dropping invalid path switch",
				"player", p.Name(),
				"pathIndex", sw.PathIndex,
				"cost", sw.Cost)
			continue
		}
		if g.currentNode > 0 && sw.PathIndex <= g.currentNode {
			continue
		}
		if sw.Cost < 0 {
			sw.Cost = 0
		}
		g.switches = append(g.switches, sw)
		lastIndex, haveLast = sw.PathIndex, true
	}

	g.loaded = true
	return true
}

// dropNonFinite copies nodes without the ones whose coordinates are NaN or
// Inf. kept[i] is the index in the copy of the first kept node at or after i.
func dropNonFinite(p PlayerHost, nodes model.TaxiPath) (model.TaxiPath, []uint32) {
	out := make(model.TaxiPath, 0, len(nodes))
	kept := make([]uint32, len(nodes))
	for i, n := range nodes {
		kept[i] = uint32(len(out))
		if !model.IsFinite(n.Pos) {
			slog.Warn("skipping malformed taxi node",
				"player", p.Name(),
				"path", n.PathID,
				"node", n.Index,
				"pos", n.Pos)
			continue
		}
		out = append(out, n)
	}
	return out, kept
}

// Initialize puts the player on the taxi and submits the first sub-path.
func (g *FlightPathGenerator) Initialize(p PlayerHost) {
	g.finalized = false
	g.aborted = false
	if !g.LoadPath(p) {
		return
	}
	g.Reset(p)
	g.InitEndGridInfo()
}

// Reset re-submits motion from the current node to the end of its sub-path.
func (g *FlightPathGenerator) Reset(p PlayerHost) {
	if !g.loaded || g.aborted || g.HasArrived() {
		return
	}

	p.AddUnitState(model.UnitStateInFlight)
	p.SetTaxiFlight(true)

	end := g.PathAtMapEnd()
	points := make([]mgl64.Vec3, 0, end-g.currentNode)
	for i := g.currentNode; i < end; i++ {
		points = append(points, g.path[i].Pos)
	}

	p.LaunchSpline(spline.Init{
		Points:       points,
		FirstPointID: int(g.currentNode),
		Mode:         spline.ModeFly,
		Velocity:     PlayerFlightSpeed,
	})
	g.travelTimer.Reset(0)
}

func (g *FlightPathGenerator) Update(p PlayerHost, diff uint32) bool {
	if !g.loaded || g.aborted || g.HasArrived() {
		return false
	}

	g.travelTimer.Update(diff)
	finalized := p.SplineFinalized()
	if !g.travelTimer.Passed() && !finalized {
		return true
	}
	g.travelTimer.Reset(FlightTravelUpdate)

	size := uint32(len(g.path))
	reported := p.CurrentWaypointIndex()
	if reported < 0 || reported > int(size) {
		slog.Warn("flight waypoint index out of range, treating as arrived",
			"player", p.Name(),
			"reported", reported,
			"nodes", size)
		reported = int(size)
	}

	target := uint32(reported)
	complete := target >= size || (finalized && target == size-1 && g.PathAtMapEnd() == size)
	if target >= size {
		target = size - 1
	}

	g.consumeSwitches(p)
	crossed := g.currentNode < target
	for g.currentNode < target {
		g.DoEventIfAny(p, g.path[g.currentNode], true)
		g.currentNode++
		g.consumeSwitches(p)
		g.DoEventIfAny(p, g.path[g.currentNode], false)
		g.checkPreload()
	}
	if !crossed {
		g.checkPreload()
	}

	if complete {
		g.currentNode = size
		return false
	}
	return true
}

// Finalize takes the player off the taxi. A flight that did not reach its
// last node teleports the player to GetResetPos.
func (g *FlightPathGenerator) Finalize(p PlayerHost) {
	if g.finalized {
		return
	}
	g.finalized = true

	p.ClearUnitState(model.UnitStateInFlight)
	p.SetTaxiFlight(false)
	p.StopMoving()

	if g.loaded && !g.HasArrived() {
		if pos, ok := g.GetResetPos(p); ok {
			p.NearTeleportTo(pos, p.Orientation())
		} else {
			node := g.path[min(int(g.currentNode), len(g.path)-1)]
			slog.Warn("no flight node on player map, teleporting to last node",
				"player", p.Name(),
				"map", p.MapID(),
				"targetMap", node.MapID)
			p.TeleportTo(node.MapID, node.Pos, p.Orientation())
		}
	}
	p.ClearTaxiRoute()
}

// HasArrived reports whether the last node was reached.
func (g *FlightPathGenerator) HasArrived() bool {
	return g.currentNode >= uint32(len(g.path))
}

// PathAtMapEnd returns the index one past the last node of the current sub-path.
func (g *FlightPathGenerator) PathAtMapEnd() uint32 {
	size := uint32(len(g.path))
	if g.currentNode >= size {
		return size
	}
	curMap := g.path[g.currentNode].MapID
	for i := g.currentNode; i < size; i++ {
		if g.path[i].MapID != curMap {
			return i
		}
	}
	return size
}

// OnTeleported re-submits the flight from the current node after an
// instant position change. A teleport to another map resyncs the node first.
func (g *FlightPathGenerator) OnTeleported(p PlayerHost) {
	if !g.loaded || g.aborted || g.HasArrived() {
		return
	}
	if g.path[g.currentNode].MapID != p.MapID() && !g.SetCurrentNodeAfterTeleport(p) {
		return
	}
	g.Reset(p)
}

// SetCurrentNodeAfterTeleport moves the current node forward to the first node
// on the player's map. Without a match the flight is aborted.
func (g *FlightPathGenerator) SetCurrentNodeAfterTeleport(p PlayerHost) bool {
	if !g.loaded || g.HasArrived() {
		return false
	}

	hostMap := p.MapID()
	for i := g.currentNode; i < uint32(len(g.path)); i++ {
		if g.path[i].MapID != hostMap {
			continue
		}
		if i == g.currentNode+1 {
			// Обычный переход на следующую карту: события стыка сохраняем.
			g.DoEventIfAny(p, g.path[g.currentNode], true)
			g.currentNode = i
			g.consumeSwitches(p)
			g.DoEventIfAny(p, g.path[i], false)
		} else {
			g.currentNode = i
		}
		g.InitEndGridInfo()
		return true
	}

	slog.Warn("player map not on remaining flight path",
		"player", p.Name(),
		"map", hostMap,
		"node", g.currentNode)
	g.aborted = true
	return false
}

// SkipCurrentNode advances one node without firing its events.
func (g *FlightPathGenerator) SkipCurrentNode() {
	if g.currentNode < uint32(len(g.path)) {
		g.currentNode++
	}
}

// DoEventIfAny fires the node's departure or arrival event.
func (g *FlightPathGenerator) DoEventIfAny(p PlayerHost, node model.TaxiNode, departure bool) {
	eventID := node.ArrivalEventID
	if departure {
		eventID = node.DepartureEventID
	}
	if eventID == 0 || g.events == nil {
		return
	}

	if IsDebugEnabled() {
		slog.Debug("taxi node event",
			"player", p.Name(),
			"node", node.Index,
			"eventID", eventID,
			"departure", departure)
	}
	g.events.Fire(eventID, p, departure)
}

// GetResetPos returns the last node at or before the current one that lies on
// the player's map.
func (g *FlightPathGenerator) GetResetPos(p PlayerHost) (mgl64.Vec3, bool) {
	if len(g.path) == 0 {
		return mgl64.Vec3{}, false
	}

	hostMap := p.MapID()
	idx := min(int(g.currentNode), len(g.path)-1)
	for i := idx; i >= 0; i-- {
		if g.path[i].MapID == hostMap {
			return g.path[i].Pos, true
		}
	}
	return mgl64.Vec3{}, false
}

// InitEndGridInfo caches the end of the current sub-path and picks the node
// from which its grid is preloaded.
func (g *FlightPathGenerator) InitEndGridInfo() {
	end := g.PathAtMapEnd()
	if end == 0 || int(end) > len(g.path) {
		return
	}

	last := g.path[end-1]
	g.endMapID = last.MapID
	g.endGridX = last.Pos.X()
	g.endGridY = last.Pos.Y()
	g.preloadTargetNode = end - 1
	g.preloadDone = false

	for i := PreloadNodeDistance; i > 0; i-- {
		if end >= i && g.path[end-i].MapID == g.endMapID {
			g.preloadTargetNode = end - i
			break
		}
	}
}

// PreloadEndGrid asks the map service for the cached end grid.
func (g *FlightPathGenerator) PreloadEndGrid() error {
	if g.maps == nil {
		g.preloadDone = true
		return nil
	}
	if err := g.maps.EnsureGridLoaded(g.endMapID, g.endGridX, g.endGridY); err != nil {
		return err
	}
	g.preloadDone = true
	return nil
}

func (g *FlightPathGenerator) checkPreload() {
	if g.preloadDone || g.currentNode < g.preloadTargetNode {
		return
	}
	if err := g.PreloadEndGrid(); err != nil {
		slog.Warn("end grid preload failed, will retry",
			"map", g.endMapID,
			"x", g.endGridX,
			"y", g.endGridY,
			"error", err)
	}
}

// consumeSwitches debits every marker the current node has reached.
func (g *FlightPathGenerator) consumeSwitches(p PlayerHost) {
	for len(g.switches) > 0 && g.switches[0].PathIndex <= g.currentNode {
		sw := g.switches[0]
		g.switches = g.switches[1:]

		p.NextTaxiDestination()
		if sw.Cost > 0 {
			g.taxi.Debit(p, sw.Cost)
		}
		if IsDebugEnabled() {
			slog.Debug("taxi path switch",
				"player", p.Name(),
				"pathIndex", sw.PathIndex,
				"cost", sw.Cost)
		}
	}
}
