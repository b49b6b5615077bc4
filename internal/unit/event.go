package unit

import "github.com/go-gl/mathgl/mgl64"

// EventType classifies motion events.
type EventType string

const (
	EventSpline    EventType = "spline"
	EventArrived   EventType = "arrived"
	EventTeleport  EventType = "teleport"
	EventGenPush   EventType = "generator_push"
	EventGenPop    EventType = "generator_pop"
	EventMapChange EventType = "map_change"
	EventSay       EventType = "say"
)

// Event is a motion notification published to the unit's observer.
type Event struct {
	Type      EventType    `json:"type"`
	GUID      uint64       `json:"guid"`
	Name      string       `json:"name"`
	MapID     uint32       `json:"map"`
	Pos       mgl64.Vec3   `json:"pos"`
	Generator string       `json:"generator,omitempty"`
	Mode      string       `json:"mode,omitempty"`
	Points    []mgl64.Vec3 `json:"points,omitempty"`
	FirstNode int          `json:"first_node,omitempty"`
	Text      string       `json:"text,omitempty"`
}

// Observer receives motion events. Called from the map tick; must not block.
type Observer func(Event)
