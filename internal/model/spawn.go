package model

// Spawn describes a creature placed into the world at startup.
type Spawn struct {
	ID        uint64
	Entry     uint32
	Name      string
	MapID     uint32
	Loc       Location
	PathID    uint32 // 0 = stands still
	Repeating bool
}

// PlayerSpawn describes a test character created on startup.
type PlayerSpawn struct {
	GUID  uint64
	Name  string
	MapID uint32
	Loc   Location
	Money int64
}
