package waypoint

import "errors"

var (
	ErrNoSource    = errors.New("waypoint store has no source")
	ErrDuplicateID = errors.New("duplicate waypoint path id")
	ErrNilPath     = errors.New("nil waypoint path")
)
