package model

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oklog/ulid/v2"
)

// TaxiNodeFlags marks special taxi path nodes.
type TaxiNodeFlags uint8

const (
	TaxiNodeTeleport TaxiNodeFlags = 1 << 0 // map change happens after this node
	TaxiNodeStop     TaxiNodeFlags = 1 << 1 // flight stops here
)

// TaxiNode is one point of a flight path.
type TaxiNode struct {
	PathID           uint32
	Index            uint32 // index inside its own taxi path
	MapID            uint32
	Pos              mgl64.Vec3
	Flags            TaxiNodeFlags
	Delay            uint32
	ArrivalEventID   uint32
	DepartureEventID uint32
}

// TaxiPath is the node list of one trip. Each player owns its copy.
type TaxiPath []TaxiNode

// PathSwitch marks the node where the trip enters the next paid leg.
type PathSwitch struct {
	PathIndex uint32
	Cost      int32
}

// TaxiTrip is a fully resolved flight: nodes, paid leg switches and
// the flight-master destinations it was built from.
type TaxiTrip struct {
	ID           ulid.ULID
	Nodes        TaxiPath
	Switches     []PathSwitch
	Destinations []uint32
	FirstCost    int32
}

// TotalCost returns the sum of all leg costs.
func (t *TaxiTrip) TotalCost() int64 {
	total := int64(t.FirstCost)
	for _, s := range t.Switches {
		total += int64(s.Cost)
	}
	return total
}

// TaxiStation is a flight master node a route can start or end at.
type TaxiStation struct {
	ID    uint32
	Name  string
	MapID uint32
	Pos   mgl64.Vec3
}

// TaxiLeg is a paid path between two stations.
type TaxiLeg struct {
	ID    uint32
	From  uint32
	To    uint32
	Cost  int32
	Nodes TaxiPath
}
