package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Location представляет точку в мире вместе с направлением взгляда.
// Value type, передаётся по значению (immutable).
type Location struct {
	Pos         mgl64.Vec3
	Orientation float64 // radians, [0, 2π)
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y, z, orientation float64) Location {
	return Location{Pos: mgl64.Vec3{x, y, z}, Orientation: NormalizeOrientation(orientation)}
}

func (l Location) X() float64 { return l.Pos[0] }
func (l Location) Y() float64 { return l.Pos[1] }
func (l Location) Z() float64 { return l.Pos[2] }

// WithOrientation возвращает новый Location с обновлённым направлением (immutable pattern).
func (l Location) WithOrientation(o float64) Location {
	l.Orientation = NormalizeOrientation(o)
	return l
}

// WithCoordinates возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.Pos = mgl64.Vec3{x, y, z}
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt).
func (l Location) DistanceSquared(other Location) float64 {
	d := l.Pos.Sub(other.Pos)
	return d.Dot(d)
}

// Distance2DSquared ignores height.
func (l Location) Distance2DSquared(other Location) float64 {
	dx := l.Pos[0] - other.Pos[0]
	dy := l.Pos[1] - other.Pos[1]
	return dx*dx + dy*dy
}

// IsFinite reports whether every coordinate is a real number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// NormalizeOrientation wraps an angle into [0, 2π).
func NormalizeOrientation(o float64) float64 {
	if math.IsNaN(o) || math.IsInf(o, 0) {
		return 0
	}
	o = math.Mod(o, 2*math.Pi)
	if o < 0 {
		o += 2 * math.Pi
	}
	return o
}

// AngleTo returns the orientation facing from one point to another in the XY plane.
func AngleTo(from, to mgl64.Vec3) float64 {
	return NormalizeOrientation(math.Atan2(to[1]-from[1], to[0]-from[0]))
}
