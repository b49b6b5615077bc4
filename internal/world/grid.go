package world

import (
	"fmt"
	"math"
)

// Grid constants. Каждая карта: 64×64 грида по 533.33 ярда, центр в (0, 0).
const (
	MaxNumberOfGrids = 64
	SizeOfGrids      = 533.3333
	CenterGridID     = MaxNumberOfGrids / 2
	CenterGridOffset = SizeOfGrids / 2

	// MapHalfSize is the distance from the map center to its edge.
	MapHalfSize = SizeOfGrids * MaxNumberOfGrids / 2
)

// GridCoord is the index of a grid inside a map.
type GridCoord struct {
	X, Y int
}

// IsValid checks that both indexes are inside the map.
func (g GridCoord) IsValid() bool {
	return g.X >= 0 && g.X < MaxNumberOfGrids && g.Y >= 0 && g.Y < MaxNumberOfGrids
}

// ID returns a unique grid number inside a map.
func (g GridCoord) ID() int {
	return g.X*MaxNumberOfGrids + g.Y
}

func (g GridCoord) String() string {
	return fmt.Sprintf("[%d,%d]", g.X, g.Y)
}

// ComputeGridCoord converts world coordinates to a grid index.
// Formula: (coord - CenterGridOffset) / SizeOfGrids + CenterGridID + 0.5
func ComputeGridCoord(x, y float64) GridCoord {
	xOffset := (x - CenterGridOffset) / SizeOfGrids
	yOffset := (y - CenterGridOffset) / SizeOfGrids
	return GridCoord{
		X: int(math.Floor(xOffset + CenterGridID + 0.5)),
		Y: int(math.Floor(yOffset + CenterGridID + 0.5)),
	}
}

// GridCenter returns world coordinates of the grid center.
func GridCenter(g GridCoord) (x, y float64) {
	x = float64(g.X-CenterGridID)*SizeOfGrids + CenterGridOffset
	y = float64(g.Y-CenterGridID)*SizeOfGrids + CenterGridOffset
	return x, y
}

// IsValidMapCoord checks that coordinates are finite and inside map bounds.
func IsValidMapCoord(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return false
	}
	return math.Abs(x) <= MapHalfSize && math.Abs(y) <= MapHalfSize
}
