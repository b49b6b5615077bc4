package chat

import (
	"fmt"
	"strconv"
	"time"

	"github.com/udisondev/pathgen/internal/battleground"
	"github.com/udisondev/pathgen/internal/taxi"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/world"
)

func builtinCommands() []*Command {
	return []*Command{
		{Names: []string{"wp", "waypoint"}, Usage: "wp show|pause|resume <guid> [ms]", Run: runWaypoint},
		{Names: []string{"taxi"}, Usage: "taxi go <node> <node>... | taxi skip | taxi cancel", Run: runTaxi},
		{Names: []string{"grid"}, Usage: "grid <map> <x> <y>", Run: runGrid},
		{Names: []string{"npc"}, Usage: "npc despawn <guid> [seconds] | npc respawn <guid>", Run: runNpc},
		{Names: []string{"arena"}, Usage: "arena prepare|begin|undermap|states | arena trigger <id>", Run: runArena},
	}
}

func runWaypoint(c *Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	guid, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return ErrUsage
	}
	var ms uint32
	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return ErrUsage
		}
		ms = uint32(v)
	}

	cr, ok := c.World.FindCreature(guid)
	if !ok {
		return c.fail(StrCreatureNotFound, guid)
	}
	g, ok := cr.WaypointMovement()
	if !ok {
		return c.fail(StrNoWaypointMovement, guid)
	}

	switch args[0] {
	case "show":
		c.PSendSysMessage(StrWaypointInfo, guid, g.PathID(), g.CurrentNode(), g.Stalled(), g.NextMoveIn())
	case "pause":
		g.Pause(ms)
		c.PSendSysMessage(StrWaypointPaused, guid)
	case "resume":
		g.Resume(ms)
		c.PSendSysMessage(StrWaypointResumed, guid)
	default:
		return ErrUsage
	}
	return nil
}

func runTaxi(c *Context, args []string) error {
	if len(args) == 0 || c.Taxi == nil {
		return ErrUsage
	}
	p, ok := c.World.FindPlayer(c.PlayerGUID())
	if !ok {
		return c.fail(StrPlayerNotFound, c.PlayerGUID())
	}

	switch args[0] {
	case "go":
		route, err := parseRoute(args[1:])
		if err != nil {
			return err
		}
		return taxiGo(c, p, route)

	case "skip":
		g, ok := p.FlightMovement()
		if !ok {
			return c.fail(StrNoFlight)
		}
		g.SkipCurrentNode()
		g.Reset(p)
		c.PSendSysMessage(StrTaxiSkipped, g.CurrentNode())
		return nil

	case "cancel":
		if !c.Taxi.Cancel(p) {
			return c.fail(StrNoFlight)
		}
		return nil
	}
	return ErrUsage
}

// taxiGo puts p at the first station of route and starts the flight.
func taxiGo(c *Context, p *unit.Player, route []uint32) error {
	tables := c.Taxi.Tables()
	if tables == nil {
		return ErrUsage
	}
	start, ok := tables.Station(route[0])
	if !ok {
		return fmt.Errorf("station %d: %w", route[0], ErrCommandFailed)
	}
	if p.IsInFlight() {
		return taxi.ErrAlreadyInFlight
	}

	if !p.TeleportTo(start.MapID, start.Pos, p.Orientation()) {
		return fmt.Errorf("teleport to map %d: %w", start.MapID, ErrCommandFailed)
	}

	before := p.Money()
	g, err := c.Taxi.Activate(p, route)
	if err != nil {
		return err
	}
	c.PSendSysMessage(StrTaxiStarted, len(g.Path()), before-p.Money())
	return nil
}

func parseRoute(args []string) ([]uint32, error) {
	if len(args) < 2 {
		return nil, ErrUsage
	}
	route := make([]uint32, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, ErrUsage
		}
		route = append(route, uint32(id))
	}
	return route, nil
}

func runGrid(c *Context, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	mapID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return ErrUsage
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		return ErrUsage
	}

	if err := c.World.EnsureGridLoaded(uint32(mapID), x, y); err != nil {
		return err
	}
	c.PSendSysMessage(StrGridLoaded, mapID, world.ComputeGridCoord(x, y).String())
	return nil
}

func runNpc(c *Context, args []string) error {
	if len(args) < 2 || c.Spawns == nil {
		return ErrUsage
	}
	guid, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return ErrUsage
	}

	switch args[0] {
	case "despawn":
		if len(args) > 3 {
			return ErrUsage
		}
		var delay time.Duration
		if len(args) == 3 {
			sec, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return ErrUsage
			}
			delay = time.Duration(sec) * time.Second
		}
		if !c.Spawns.Despawn(guid) {
			return c.fail(StrCreatureNotFound, guid)
		}
		c.PSendSysMessage(StrDespawned, guid)
		if len(args) == 3 && c.Respawn != nil {
			c.Respawn.ScheduleRespawn(guid, delay)
			c.PSendSysMessage(StrRespawnScheduled, guid, delay)
		}
		return nil

	case "respawn":
		if _, err := c.Spawns.Respawn(guid); err != nil {
			return err
		}
		return nil
	}
	return ErrUsage
}

func runArena(c *Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	if c.Arena == nil {
		return c.fail(StrNoArena)
	}
	na := c.Arena

	switch args[0] {
	case "prepare":
		battleground.Prepare(na)
	case "begin":
		battleground.Begin(na)
	case "states":
		for _, ws := range na.FillInitialWorldStates() {
			c.SendSysMessage(fmt.Sprintf("%d = %d", ws.ID, ws.Value))
		}
		return nil
	case "undermap", "trigger":
		p, ok := c.World.FindPlayer(c.PlayerGUID())
		if !ok {
			return c.fail(StrPlayerNotFound, c.PlayerGUID())
		}
		if args[0] == "undermap" {
			na.HandlePlayerUnderMap(p)
			break
		}
		if len(args) != 2 {
			return ErrUsage
		}
		trigger, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return ErrUsage
		}
		na.HandleAreaTrigger(p, uint32(trigger))
	default:
		return ErrUsage
	}

	c.PSendSysMessage(StrArenaState, na.Name(), na.Status())
	return nil
}
