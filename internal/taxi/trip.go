package taxi

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/udisondev/pathgen/internal/model"
)

// JointMergeDistance: leading nodes of a leg closer than this to the end of
// the previous leg are dropped, so the flight does not loop at a station.
const JointMergeDistance = 40.0

// Tables is an immutable snapshot of stations and legs.
type Tables struct {
	stations map[uint32]model.TaxiStation
	legs     map[[2]uint32]model.TaxiLeg
}

// NewTables indexes stations and legs by id and by (from, to).
func NewTables(stations []model.TaxiStation, legs []model.TaxiLeg) *Tables {
	t := &Tables{
		stations: make(map[uint32]model.TaxiStation, len(stations)),
		legs:     make(map[[2]uint32]model.TaxiLeg, len(legs)),
	}
	for _, s := range stations {
		t.stations[s.ID] = s
	}
	for _, l := range legs {
		t.legs[[2]uint32{l.From, l.To}] = l
	}
	return t
}

// Station returns the station with id.
func (t *Tables) Station(id uint32) (model.TaxiStation, bool) {
	s, ok := t.stations[id]
	return s, ok
}

// Leg returns the direct leg from one station to another.
func (t *Tables) Leg(from, to uint32) (model.TaxiLeg, bool) {
	l, ok := t.legs[[2]uint32{from, to}]
	return l, ok
}

func (t *Tables) StationCount() int { return len(t.stations) }
func (t *Tables) LegCount() int     { return len(t.legs) }

// BuildTrip resolves a station route into one node list with a path-switch
// marker at the first node of every leg after the first.
func (t *Tables) BuildTrip(route []uint32) (*model.TaxiTrip, error) {
	if len(route) < 2 {
		return nil, ErrRouteTooShort
	}
	for _, id := range route {
		if _, ok := t.stations[id]; !ok {
			return nil, fmt.Errorf("station %d: %w", id, ErrUnknownStation)
		}
	}

	trip := &model.TaxiTrip{
		ID:           ulid.Make(),
		Destinations: append([]uint32(nil), route...),
	}
	for i := 1; i < len(route); i++ {
		leg, ok := t.Leg(route[i-1], route[i])
		if !ok {
			return nil, fmt.Errorf("%d -> %d: %w", route[i-1], route[i], ErrNoPath)
		}

		if i == 1 {
			trip.FirstCost = leg.Cost
			trip.Nodes = append(trip.Nodes, leg.Nodes...)
			continue
		}

		nodes := trimJoint(trip.Nodes[len(trip.Nodes)-1], leg.Nodes)
		trip.Switches = append(trip.Switches, model.PathSwitch{
			PathIndex: uint32(len(trip.Nodes)),
			Cost:      leg.Cost,
		})
		trip.Nodes = append(trip.Nodes, nodes...)
	}
	return trip, nil
}

// trimJoint drops leading nodes of next that sit on last's map within
// JointMergeDistance of it. At least one node is always kept.
func trimJoint(last model.TaxiNode, next model.TaxiPath) model.TaxiPath {
	skip := 0
	for skip < len(next)-1 {
		n := next[skip]
		if n.MapID != last.MapID || n.Pos.Sub(last.Pos).Len() >= JointMergeDistance {
			break
		}
		skip++
	}
	return next[skip:]
}
