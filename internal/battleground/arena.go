// Package battleground implements arena scenes: static objects (doors, buffs,
// ready markers), starting events, area triggers and world states.
//
// Сцена не потокобезопасна: все вызовы идут из тика карты арены.
package battleground

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
)

// Status is the lifecycle state of a battleground.
type Status int32

const (
	StatusNone       Status = iota // created, not queued
	StatusWaitQueue                // waiting for players to queue
	StatusWaitJoin                 // players are inside, doors closed
	StatusInProgress               // doors open, match running
	StatusWaitLeave                // match over
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusWaitQueue:
		return "WAIT_QUEUE"
	case StatusWaitJoin:
		return "WAIT_JOIN"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusWaitLeave:
		return "WAIT_LEAVE"
	default:
		return "UNKNOWN"
	}
}

// Team identifies an arena side.
type Team uint8

const (
	TeamAlliance Team = iota
	TeamHorde
)

// RespawnImmediately spawns an object at once.
const RespawnImmediately time.Duration = 0

// Arena world-state keys published by every arena.
const (
	WorldStateAlivePlayersGreen uint32 = 3600 // horde
	WorldStateAlivePlayersGold  uint32 = 3601 // alliance
)

// WorldState is one key/value pair of the initial world-state packet.
type WorldState struct {
	ID    uint32
	Value uint32
}

// Teleporter is the part of a player a scene moves around.
type Teleporter interface {
	NearTeleportTo(pos mgl64.Vec3, orientation float64)
	Orientation() float64
}

// Object is a static scene object (door, buff, ready marker).
type Object struct {
	Entry    uint32
	Loc      model.Location
	Rotation mgl64.Quat
	Respawn  time.Duration // default respawn delay

	added     bool
	open      bool
	respawnAt time.Time // zero = spawned
	despawned bool
}

// Scene is an arena with its own setup and starting events.
type Scene interface {
	Status() Status
	SetStatus(Status)
	SetupBattleground() error
	StartingEventCloseDoors()
	StartingEventOpenDoors()
	HandlePlayerUnderMap(p Teleporter) bool
	HandleAreaTrigger(p Teleporter, trigger uint32)
	FillInitialWorldStates() []WorldState
}

// Arena is the shared part of arena scenes.
type Arena struct {
	name    string
	mapID   uint32
	status  Status
	objects []Object
	players map[uint64]Team
	dead    map[uint64]struct{}

	now func() time.Time
}

// NewArena creates an arena with objectCount object slots.
func NewArena(name string, mapID uint32, objectCount int) *Arena {
	return &Arena{
		name:    name,
		mapID:   mapID,
		objects: make([]Object, objectCount),
		players: make(map[uint64]Team),
		dead:    make(map[uint64]struct{}),
		now:     time.Now,
	}
}

func (a *Arena) Name() string { return a.name }

func (a *Arena) MapID() uint32 { return a.mapID }

func (a *Arena) Status() Status { return a.status }

func (a *Arena) SetStatus(s Status) {
	if a.status != s {
		slog.Debug("arena status changed", "arena", a.name, "from", a.status, "to", s)
	}
	a.status = s
}

// AddObject fills slot with an object. The object starts despawned unless
// respawn is RespawnImmediately.
func (a *Arena) AddObject(slot int, entry uint32, x, y, z, o float64, rot mgl64.Quat, respawn time.Duration) error {
	if slot < 0 || slot >= len(a.objects) {
		return fmt.Errorf("arena %s slot %d: %w", a.name, slot, ErrBadSlot)
	}
	if a.objects[slot].added {
		return fmt.Errorf("arena %s slot %d: %w", a.name, slot, ErrSlotTaken)
	}
	a.objects[slot] = Object{
		Entry:     entry,
		Loc:       model.Location{Pos: mgl64.Vec3{x, y, z}, Orientation: o},
		Rotation:  rot,
		Respawn:   respawn,
		added:     true,
		despawned: respawn != RespawnImmediately,
	}
	return nil
}

// Object returns the object in slot.
func (a *Arena) Object(slot int) (Object, bool) {
	if slot < 0 || slot >= len(a.objects) || !a.objects[slot].added {
		return Object{}, false
	}
	return a.objects[slot], true
}

// ObjectCount returns the number of filled slots.
func (a *Arena) ObjectCount() int {
	n := 0
	for i := range a.objects {
		if a.objects[i].added {
			n++
		}
	}
	return n
}

// SpawnObject spawns slot now (RespawnImmediately) or despawns it until
// respawn has passed.
func (a *Arena) SpawnObject(slot int, respawn time.Duration) {
	obj := a.slot(slot)
	if obj == nil {
		return
	}
	if respawn == RespawnImmediately {
		obj.despawned = false
		obj.respawnAt = time.Time{}
		return
	}
	obj.despawned = true
	obj.respawnAt = a.now().Add(respawn)
}

// IsSpawned reports whether slot is visible in the world now.
func (a *Arena) IsSpawned(slot int) bool {
	obj := a.slot(slot)
	if obj == nil {
		return false
	}
	if obj.despawned && !obj.respawnAt.IsZero() && !a.now().Before(obj.respawnAt) {
		obj.despawned = false
		obj.respawnAt = time.Time{}
	}
	return !obj.despawned
}

// DoorOpen opens the door in slot.
func (a *Arena) DoorOpen(slot int) {
	if obj := a.slot(slot); obj != nil {
		obj.open = true
	}
}

// DoorClose closes the door in slot.
func (a *Arena) DoorClose(slot int) {
	if obj := a.slot(slot); obj != nil {
		obj.open = false
	}
}

// IsDoorOpen reports whether the door in slot is open.
func (a *Arena) IsDoorOpen(slot int) bool {
	obj := a.slot(slot)
	return obj != nil && obj.open
}

// AddPlayer registers a living player on team.
func (a *Arena) AddPlayer(guid uint64, team Team) {
	a.players[guid] = team
	delete(a.dead, guid)
}

// RemovePlayer forgets the player.
func (a *Arena) RemovePlayer(guid uint64) {
	delete(a.players, guid)
	delete(a.dead, guid)
}

// HandleKill marks guid as dead.
func (a *Arena) HandleKill(guid uint64) {
	if _, ok := a.players[guid]; ok {
		a.dead[guid] = struct{}{}
	}
}

// AlivePlayersCount returns living players of team.
func (a *Arena) AlivePlayersCount(team Team) uint32 {
	var n uint32
	for guid, t := range a.players {
		if _, dead := a.dead[guid]; t == team && !dead {
			n++
		}
	}
	return n
}

// SetupBattleground has nothing to place in the base arena.
func (a *Arena) SetupBattleground() error { return nil }

func (a *Arena) StartingEventCloseDoors() {}

func (a *Arena) StartingEventOpenDoors() {}

// HandlePlayerUnderMap leaves the player where it is.
func (a *Arena) HandlePlayerUnderMap(Teleporter) bool { return false }

func (a *Arena) HandleAreaTrigger(Teleporter, uint32) {}

// FillInitialWorldStates returns the alive-player counters of both teams.
func (a *Arena) FillInitialWorldStates() []WorldState {
	return []WorldState{
		{ID: WorldStateAlivePlayersGreen, Value: a.AlivePlayersCount(TeamHorde)},
		{ID: WorldStateAlivePlayersGold, Value: a.AlivePlayersCount(TeamAlliance)},
	}
}

func (a *Arena) slot(slot int) *Object {
	if slot < 0 || slot >= len(a.objects) || !a.objects[slot].added {
		slog.Warn("arena object slot is empty", "arena", a.name, "slot", slot)
		return nil
	}
	return &a.objects[slot]
}

// Prepare closes the doors and waits for players.
func Prepare(s Scene) {
	s.SetStatus(StatusWaitJoin)
	s.StartingEventCloseDoors()
}

// Begin opens the doors and starts the match.
func Begin(s Scene) {
	s.StartingEventOpenDoors()
	s.SetStatus(StatusInProgress)
}
