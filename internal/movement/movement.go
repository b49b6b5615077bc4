// Package movement drives units along pre-baked paths.
//
// Генераторы движения работают внутри тика карты и никогда не блокируются.
// Один генератор принадлежит ровно одному юниту (через MotionMaster).
package movement

import "sync/atomic"

const (
	// FlightTravelUpdate is the interval between flight node syncs, in milliseconds.
	FlightTravelUpdate uint32 = 100
	// TimeDiffNextWP is the default guard between waypoint moves, in milliseconds.
	TimeDiffNextWP uint32 = 250
	// PlayerFlightSpeed is the taxi spline velocity (yards per second).
	PlayerFlightSpeed = 32.0
	// PreloadNodeDistance is how many nodes before the end of a sub-path
	// the end grid preload may start.
	PreloadNodeDistance uint32 = 3
)

// Kind identifies a generator type on the motion stack.
type Kind uint8

const (
	KindIdle Kind = iota
	KindWaypoint
	KindFlight
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "IDLE"
	case KindWaypoint:
		return "WAYPOINT"
	case KindFlight:
		return "FLIGHT"
	default:
		return "UNKNOWN"
	}
}

// Generator is a per-unit movement state machine.
// Update returns false when the generator is done and must be popped.
type Generator[H any] interface {
	Initialize(h H)
	Reset(h H)
	Update(h H, diff uint32) bool
	Finalize(h H)
	Kind() Kind
}

// ArrivalListener is implemented by generators that react to the host
// reaching the end of its submitted spline.
type ArrivalListener[H any] interface {
	OnArrived(h H)
}

// TeleportListener is implemented by generators that must re-submit motion
// after the host was moved instantly.
type TeleportListener[H any] interface {
	OnTeleported(h H)
}

var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables per-node debug logs for the movement subsystem.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if movement debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
