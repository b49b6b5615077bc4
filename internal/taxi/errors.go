package taxi

import "errors"

var (
	ErrRouteTooShort   = errors.New("taxi route needs at least two stations")
	ErrUnknownStation  = errors.New("unknown taxi station")
	ErrNoPath          = errors.New("no taxi path between stations")
	ErrNotEnoughMoney  = errors.New("not enough money")
	ErrAlreadyInFlight = errors.New("player is already in flight")
	ErrTooFar          = errors.New("player is too far from the flight master")
	ErrNoSource        = errors.New("taxi service has no source")
)
