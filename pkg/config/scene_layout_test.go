package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const villageLayout = `
name: Village
next: Cave
nodes:
  - name: World
    children:
      - name: Gate
      - name: Elder
        dialogueNpc: Village:World/Elder
      - name: Apple
        persistentId: 3d9f1a52-8c47-4e2b-b6a1-0f5e7c2d9b84
        pickup:
          respawnSeconds: 5
      - name: Wall
        active: false
        persistable: false
bosses:
  - id: golem
    activateOnStart: [World/Wall]
`

func TestParseSceneLayout(t *testing.T) {
	layout, err := ParseSceneLayout([]byte(villageLayout))
	if err != nil {
		t.Fatalf("ParseSceneLayout failed: %v", err)
	}

	if layout.Name != "Village" || layout.Next != "Cave" {
		t.Errorf("name/next = %s/%s", layout.Name, layout.Next)
	}
	world := layout.Nodes[0]
	if len(world.Children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(world.Children))
	}

	gate := world.Children[0]
	if !gate.IsActive() || !gate.IsPersistable() {
		t.Errorf("Gate should default to active and persistable")
	}
	wall := world.Children[3]
	if wall.IsActive() || wall.IsPersistable() {
		t.Errorf("Wall should be inactive and not persistable")
	}

	apple := world.Children[2]
	if apple.Pickup == nil || apple.Pickup.RespawnSeconds != 5 {
		t.Errorf("Apple pickup = %+v", apple.Pickup)
	}

	if got := layout.Bosses[0].RevealInterval; got != 0.5 {
		t.Errorf("default RevealInterval = %v, want 0.5", got)
	}
}

func TestParseSceneLayoutInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "nodes: [{name: A}]", "scene name is required"},
		{"no nodes", "name: X", "at least one node"},
		{"slash in name", "name: X\nnodes: [{name: a/b}]", "invalid node name"},
		{"duplicate sibling", "name: X\nnodes: [{name: A}, {name: A}]", "duplicate node A"},
		{"boss without id", "name: X\nnodes: [{name: A}]\nbosses: [{parts: [A]}]", "id is required"},
		{"boss unknown ref", "name: X\nnodes: [{name: A}]\nbosses: [{id: b, parts: [A/B]}]", "unknown node"},
		{"hidden pickup", "name: X\nnodes: [{name: A, persistable: false, persistentId: p1, pickup: {}}]", "must be persistable"},
		{"pickup without id", "name: X\nnodes: [{name: A, pickup: {}}]", "requires a persistentId"},
		{"bad yaml", "name: [", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSceneLayout([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadSceneLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.yaml")
	if err := os.WriteFile(path, []byte(villageLayout), 0644); err != nil {
		t.Fatal(err)
	}

	layout, err := LoadSceneLayout(path)
	if err != nil {
		t.Fatalf("LoadSceneLayout failed: %v", err)
	}
	if layout.Name != "Village" {
		t.Errorf("Name = %s", layout.Name)
	}

	if _, err := LoadSceneLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSceneLayoutsShipped(t *testing.T) {
	matches, err := filepath.Glob("../../data/scenes/*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Skip("no shipped scene layouts")
	}
	for _, path := range matches {
		if _, err := LoadSceneLayout(path); err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}
