package model

import "github.com/go-gl/mathgl/mgl64"

// WaypointMoveType selects the gait used to reach a waypoint node.
type WaypointMoveType uint8

const (
	MoveTypeWalk WaypointMoveType = iota
	MoveTypeRun
	MoveTypeLand
	MoveTypeTakeOff
)

// String returns human-readable move type name.
func (t WaypointMoveType) String() string {
	switch t {
	case MoveTypeWalk:
		return "WALK"
	case MoveTypeRun:
		return "RUN"
	case MoveTypeLand:
		return "LAND"
	case MoveTypeTakeOff:
		return "TAKEOFF"
	default:
		return "UNKNOWN"
	}
}

// ParseWaypointMoveType maps a data-file name to a move type.
func ParseWaypointMoveType(s string) (WaypointMoveType, bool) {
	switch s {
	case "", "walk", "WALK":
		return MoveTypeWalk, true
	case "run", "RUN":
		return MoveTypeRun, true
	case "land", "LAND":
		return MoveTypeLand, true
	case "takeoff", "TAKEOFF":
		return MoveTypeTakeOff, true
	default:
		return MoveTypeWalk, false
	}
}

// WaypointNode is a single point of a creature waypoint path.
type WaypointNode struct {
	ID          uint32 // point number inside the path
	Pos         mgl64.Vec3
	Orientation float64 // 0 = keep facing
	Delay       uint32  // ms to wait after arrival
	EventID     uint32  // 0 = no event
	EventChance uint8   // 0..100
	MoveType    WaypointMoveType
}

// WaypointPath is an immutable, ordered list of waypoint nodes.
// Published paths are shared by every creature that follows them.
type WaypointPath struct {
	id    uint32
	nodes []WaypointNode
}

// NewWaypointPath copies nodes into a new immutable path.
func NewWaypointPath(id uint32, nodes []WaypointNode) *WaypointPath {
	cp := make([]WaypointNode, len(nodes))
	copy(cp, nodes)
	return &WaypointPath{id: id, nodes: cp}
}

// ID returns the path identifier.
func (p *WaypointPath) ID() uint32 { return p.id }

// Len returns number of nodes.
func (p *WaypointPath) Len() int {
	if p == nil {
		return 0
	}
	return len(p.nodes)
}

// Empty reports whether the path has no nodes.
func (p *WaypointPath) Empty() bool { return p.Len() == 0 }

// Node returns the node at index i. Caller must check bounds.
func (p *WaypointPath) Node(i uint32) WaypointNode { return p.nodes[i] }

// Nodes returns a copy of all nodes.
func (p *WaypointPath) Nodes() []WaypointNode {
	cp := make([]WaypointNode, len(p.nodes))
	copy(cp, p.nodes)
	return cp
}
