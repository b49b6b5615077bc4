package data

import "errors"

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrInvalidData = errors.New("invalid data")
)
