// Package spline implements the point-list motion a host runs after a
// movement generator submits it: constant velocity along a polyline that
// starts at the host's current position.
package spline

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
)

// Mode is the gait of a spline.
type Mode uint8

const (
	ModeWalk Mode = iota
	ModeRun
	ModeFly
)

// String returns human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeWalk:
		return "WALK"
	case ModeRun:
		return "RUN"
	case ModeFly:
		return "FLY"
	default:
		return "UNKNOWN"
	}
}

// Animation is the one-shot animation played on launch.
type Animation uint8

const (
	AnimationNone Animation = iota
	AnimationToGround
	AnimationToFly
)

// Init describes a motion submission.
type Init struct {
	Points       []mgl64.Vec3
	FirstPointID int // path index of Points[0]
	Mode         Mode
	Velocity     float64 // yards per second, 0 = host default for Mode
	Facing       float64
	HasFacing    bool
	Animation    Animation
}

// MoveSpline is a running motion. Not thread-safe; owned by one host.
type MoveSpline struct {
	points       []mgl64.Vec3 // [0] is the start position
	cumulative   []float64    // cumulative length at each point
	firstPointID int
	velocity     float64
	traveled     float64
	reached      int // number of Init.Points already passed
	finalized    bool
	mode         Mode
	facing       float64
	hasFacing    bool
}

// New launches a spline from start through init.Points.
// velocity must already be resolved by the host.
func New(start mgl64.Vec3, init Init, velocity float64) *MoveSpline {
	pts := make([]mgl64.Vec3, 0, len(init.Points)+1)
	pts = append(pts, start)
	pts = append(pts, init.Points...)

	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + pts[i].Sub(pts[i-1]).Len()
	}

	s := &MoveSpline{
		points:       pts,
		cumulative:   cum,
		firstPointID: init.FirstPointID,
		velocity:     velocity,
		mode:         init.Mode,
		facing:       init.Facing,
		hasFacing:    init.HasFacing,
	}
	if len(init.Points) == 0 {
		s.finalized = true
	}
	return s
}

// Length returns total path length in yards.
func (s *MoveSpline) Length() float64 { return s.cumulative[len(s.cumulative)-1] }

// DurationMs returns the total travel time.
func (s *MoveSpline) DurationMs() uint32 {
	if s.velocity <= 0 {
		return 0
	}
	return uint32(s.Length() / s.velocity * 1000)
}

// Update advances the spline by diff milliseconds.
// Returns true exactly once: on the update that reaches the final point.
func (s *MoveSpline) Update(diff uint32) bool {
	if s.finalized {
		return false
	}

	total := s.Length()
	if s.velocity <= 0 {
		s.traveled = total
	} else {
		s.traveled += s.velocity * float64(diff) / 1000
	}

	for s.reached < len(s.points)-1 && s.traveled >= s.cumulative[s.reached+1] {
		s.reached++
	}

	if s.traveled >= total {
		s.traveled = total
		s.reached = len(s.points) - 1
		s.finalized = true
		return true
	}
	return false
}

// Finalized reports whether the final point was reached.
func (s *MoveSpline) Finalized() bool { return s.finalized }

// Mode returns the gait the spline was launched with.
func (s *MoveSpline) Mode() Mode { return s.mode }

// FirstPointID returns the path index of the first submitted point.
func (s *MoveSpline) FirstPointID() int { return s.firstPointID }

// PointCount returns number of submitted points (start position excluded).
func (s *MoveSpline) PointCount() int { return len(s.points) - 1 }

// CurrentPathIdx returns the path index of the last reached point.
// Before the first point is reached it reports FirstPointID: that point is
// the node the host departs from.
func (s *MoveSpline) CurrentPathIdx() int {
	if s.reached == 0 {
		return s.firstPointID
	}
	return s.firstPointID + s.reached - 1
}

// Position returns the interpolated current position.
func (s *MoveSpline) Position() mgl64.Vec3 {
	if s.finalized {
		return s.points[len(s.points)-1]
	}
	seg := s.reached
	from, to := s.points[seg], s.points[seg+1]
	segLen := s.cumulative[seg+1] - s.cumulative[seg]
	if segLen <= 0 {
		return to
	}
	t := (s.traveled - s.cumulative[seg]) / segLen
	return from.Add(to.Sub(from).Mul(t))
}

// Orientation returns the facing of the host on the spline.
// fallback is returned for degenerate segments.
func (s *MoveSpline) Orientation(fallback float64) float64 {
	if s.finalized && s.hasFacing {
		return model.NormalizeOrientation(s.facing)
	}
	seg := s.reached
	if seg >= len(s.points)-1 {
		seg = len(s.points) - 2
	}
	if seg < 0 {
		return fallback
	}
	from, to := s.points[seg], s.points[seg+1]
	if from[0] == to[0] && from[1] == to[1] {
		return fallback
	}
	return model.AngleTo(from, to)
}
