package battleground

import (
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// NagrandArenaMapID is the map of the Nagrand arena.
const NagrandArenaMapID = 559

// Object slots of the Nagrand arena.
const (
	NAObjectDoor1 = iota
	NAObjectDoor2
	NAObjectDoor3
	NAObjectDoor4
	NAObjectBuff1
	NAObjectBuff2
	NAObjectReadyMarker1
	NAObjectReadyMarker2
	NAObjectMax
)

// Game object entries.
const (
	NAObjectTypeDoor1     uint32 = 183978
	NAObjectTypeDoor2     uint32 = 183980
	NAObjectTypeDoor3     uint32 = 183977
	NAObjectTypeDoor4     uint32 = 183979
	NAObjectTypeBuff1     uint32 = 184663
	NAObjectTypeBuff2     uint32 = 184664
	ArenaReadyMarkerEntry uint32 = 301
)

// WorldStateNAArenaShow enables the arena UI.
const WorldStateNAArenaShow uint32 = 2577

// Area triggers.
const (
	NATriggerBuff1    uint32 = 4536
	NATriggerBuff2    uint32 = 4537
	NATriggerOutside1 uint32 = 4917
	NATriggerOutside2 uint32 = 5006
	NATriggerOutside3 uint32 = 5008
)

const (
	naBuffRespawn        = 90 * time.Second
	naBuffDefaultRespawn = 120 * time.Second
	naMarkerRespawn      = 300 * time.Second
)

var (
	naUnderMapPos = mgl64.Vec3{4055.504395, 2919.660645, 13.611241}
	naOutsidePos  = mgl64.Vec3{4054.15, 2923.7, 13.4}
)

type naObject struct {
	slot       int
	entry      uint32
	x, y, z, o float64
	rot        mgl64.Quat
	respawn    time.Duration
}

func rot(x, y, z, w float64) mgl64.Quat {
	return mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
}

// naObjects: ворота, баффы и маркеры готовности.
var naObjects = [NAObjectMax]naObject{
	{NAObjectDoor1, NAObjectTypeDoor1, 4031.854, 2966.833, 12.0462, -2.648788, rot(0, 0, 0.9697962, -0.2439165), RespawnImmediately},
	{NAObjectDoor2, NAObjectTypeDoor2, 4081.179, 2874.97, 12.00171, 0.4928045, rot(0, 0, 0.2439165, 0.9697962), RespawnImmediately},
	{NAObjectDoor3, NAObjectTypeDoor3, 4023.709, 2981.777, 10.70117, -2.648788, rot(0, 0, 0.9697962, -0.2439165), RespawnImmediately},
	{NAObjectDoor4, NAObjectTypeDoor4, 4090.064, 2858.438, 10.23631, 0.4928045, rot(0, 0, 0.2439165, 0.9697962), RespawnImmediately},
	{NAObjectBuff1, NAObjectTypeBuff1, 4009.189941, 2895.250000, 13.052700, -1.448624, rot(0, 0, 0.6626201, -0.7489557), naBuffDefaultRespawn},
	{NAObjectBuff2, NAObjectTypeBuff2, 4103.330078, 2946.350098, 13.051300, -0.06981307, rot(0, 0, 0.03489945, -0.9993908), naBuffDefaultRespawn},
	{NAObjectReadyMarker1, ArenaReadyMarkerEntry, 4090.46, 2875.43, 12.16, 0, rot(0, 0, 0, 0), naMarkerRespawn},
	{NAObjectReadyMarker2, ArenaReadyMarkerEntry, 4022.82, 2966.61, 12.17, 0, rot(0, 0, 0, 0), naMarkerRespawn},
}

// NagrandArena is the Nagrand arena scene.
type NagrandArena struct {
	*Arena
}

// NewNagrandArena creates the scene; SetupBattleground places its objects.
func NewNagrandArena() *NagrandArena {
	return &NagrandArena{Arena: NewArena("Nagrand Arena", NagrandArenaMapID, NAObjectMax)}
}

// SetupBattleground places doors, buffs and ready markers.
func (na *NagrandArena) SetupBattleground() error {
	for _, obj := range naObjects {
		if err := na.AddObject(obj.slot, obj.entry, obj.x, obj.y, obj.z, obj.o, obj.rot, obj.respawn); err != nil {
			slog.Error("BattlegroundNA: failed to spawn some object", "slot", obj.slot, "error", err)
			return err
		}
	}
	return nil
}

// StartingEventCloseDoors spawns all four doors.
func (na *NagrandArena) StartingEventCloseDoors() {
	for i := NAObjectDoor1; i <= NAObjectDoor4; i++ {
		na.SpawnObject(i, RespawnImmediately)
	}
}

// StartingEventOpenDoors opens the first two doors and schedules the buffs.
func (na *NagrandArena) StartingEventOpenDoors() {
	for i := NAObjectDoor1; i <= NAObjectDoor2; i++ {
		na.DoorOpen(i)
	}
	for i := NAObjectBuff1; i <= NAObjectBuff2; i++ {
		na.SpawnObject(i, naBuffRespawn)
	}
}

// HandlePlayerUnderMap returns a fallen player to the arena floor.
func (na *NagrandArena) HandlePlayerUnderMap(p Teleporter) bool {
	p.NearTeleportTo(naUnderMapPos, p.Orientation())
	return true
}

// HandleAreaTrigger teleports players that left the arena back inside.
// Ignored unless the match is in progress.
func (na *NagrandArena) HandleAreaTrigger(p Teleporter, trigger uint32) {
	if na.Status() != StatusInProgress {
		return
	}

	switch trigger {
	case NATriggerBuff1, NATriggerBuff2:
		// бафф-триггеры, ничего не делают
	case NATriggerOutside1, NATriggerOutside2, NATriggerOutside3:
		p.NearTeleportTo(naOutsidePos, p.Orientation())
	default:
		slog.Debug("unhandled arena area trigger", "arena", na.Name(), "trigger", trigger)
	}
}

// FillInitialWorldStates publishes the arena flag, then the shared counters.
func (na *NagrandArena) FillInitialWorldStates() []WorldState {
	states := []WorldState{{ID: WorldStateNAArenaShow, Value: 1}}
	return append(states, na.Arena.FillInitialWorldStates()...)
}
