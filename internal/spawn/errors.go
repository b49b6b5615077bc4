package spawn

import "errors"

var (
	ErrSpawnNotFound  = errors.New("spawn not found")
	ErrAlreadySpawned = errors.New("spawn already in world")
)
