package world

import "errors"

var (
	ErrMapNotFound  = errors.New("map not found")
	ErrInvalidCoord = errors.New("coordinates outside map")
	ErrUnitExists   = errors.New("unit already on map")
	ErrUnitNotFound = errors.New("unit not found")
	ErrMapStopped   = errors.New("map update loop stopped")
)
