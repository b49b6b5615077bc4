package battleground

import "errors"

var (
	ErrBadSlot   = errors.New("object slot out of range")
	ErrSlotTaken = errors.New("object slot already filled")
)
