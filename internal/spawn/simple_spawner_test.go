package spawn

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/unit"
	"github.com/udisondev/pathgen/internal/world"
)

func TestPlayerSpawner_SpawnAll(t *testing.T) {
	w := world.NewManager(0, 0, 1)
	var events []unit.Event
	s := NewPlayerSpawner(w, func(ev unit.Event) { events = append(events, ev) })

	players := []model.PlayerSpawn{
		{GUID: 1, Name: "Rider", MapID: 1, Loc: model.Location{Pos: mgl64.Vec3{10, 10, 0}}, Money: 500},
		{GUID: 2, Name: "Lost", MapID: 99},
		{GUID: 1, Name: "Twin", MapID: 1},
	}
	if n := s.SpawnAll(players); n != 1 {
		t.Fatalf("SpawnAll() = %d, want 1", n)
	}

	p, ok := w.FindPlayer(1)
	if !ok {
		t.Fatal("player 1 not in world")
	}
	if p.Money() != 500 {
		t.Errorf("Money() = %d, want 500", p.Money())
	}

	p.Say("hello")
	if len(events) != 1 || events[0].Text != "hello" {
		t.Errorf("observer events = %+v, want one say event", events)
	}
}
