package model

import "strings"

// UnitState is a bitmask of movement-relevant unit states.
type UnitState uint32

const (
	UnitStateRoaming     UnitState = 1 << iota // following a waypoint path
	UnitStateRoamingMove                       // spline to the next waypoint is running
	UnitStateInFlight                          // on a taxi
	UnitStateStunned
	UnitStateRooted
	UnitStateStopped // interrupted by player interaction (gossip)

	UnitStateNotMove = UnitStateStunned | UnitStateRooted
)

// Has reports whether any of the given bits are set.
func (s UnitState) Has(bits UnitState) bool { return s&bits != 0 }

// String returns a "|" separated list of set flags.
func (s UnitState) String() string {
	if s == 0 {
		return "NONE"
	}
	names := []struct {
		bit  UnitState
		name string
	}{
		{UnitStateRoaming, "ROAMING"},
		{UnitStateRoamingMove, "ROAMING_MOVE"},
		{UnitStateInFlight, "IN_FLIGHT"},
		{UnitStateStunned, "STUNNED"},
		{UnitStateRooted, "ROOTED"},
		{UnitStateStopped, "STOPPED"},
	}
	var parts []string
	for _, n := range names {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
