package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const spawnsYAML = `
creatures:
  - {guid: 5001, entry: 68, name: Stormwind City Guard, map: 0, x: 10, y: 20, z: 30, o: 3.14, path: 100}
  - {guid: 5002, entry: 68, name: Gate Guard, map: 0, x: 11, y: 21, z: 31, path: 101, repeating: false}
players:
  - {guid: 1, name: Tester, map: 0, x: 0, y: 0, z: 50, money: 1000}
`

func TestParseSpawns(t *testing.T) {
	set, err := ParseSpawns([]byte(spawnsYAML))
	if err != nil {
		t.Fatalf("ParseSpawns() failed: %v", err)
	}
	if len(set.Creatures) != 2 || len(set.Players) != 1 {
		t.Fatalf("got %d creatures, %d players", len(set.Creatures), len(set.Players))
	}

	c := set.Creatures[0]
	if c.ID != 5001 || c.PathID != 100 || !c.Repeating {
		t.Errorf("creature 5001: %+v", c)
	}
	if set.Creatures[1].Repeating {
		t.Error("repeating: false must be honoured")
	}
	if set.Players[0].Money != 1000 {
		t.Errorf("money: got %d, want 1000", set.Players[0].Money)
	}
}

func TestParseSpawns_DuplicateGUID(t *testing.T) {
	raw := "creatures:\n  - {guid: 1, name: a}\n  - {guid: 1, name: b}\n"
	if _, err := ParseSpawns([]byte(raw)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got %v, want ErrDuplicateID", err)
	}

	// creature and player guids live in different spaces
	raw = "creatures:\n  - {guid: 1, name: a}\nplayers:\n  - {guid: 1, name: b}\n"
	if _, err := ParseSpawns([]byte(raw)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSpawnFile_LoadSpawns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawns.yaml")
	if err := os.WriteFile(path, []byte(spawnsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	spawns, err := SpawnFile(path).LoadSpawns(context.Background())
	if err != nil {
		t.Fatalf("LoadSpawns() failed: %v", err)
	}
	if len(spawns) != 2 {
		t.Errorf("got %d spawns, want 2", len(spawns))
	}
}
