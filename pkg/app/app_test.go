package app

import (
	"testing"

	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/game"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	cfg.Backend = config.BackendMemory
	cfg.MinSaveInterval = 0
	cfg.Verbose = true

	a, err := NewApp(Config{Engine: cfg, ScenesDir: "../../data/scenes"})
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sceneName(t *testing.T, a *App) string {
	t.Helper()
	world, ok := a.GetSceneManager().GetCurrentScene().(game.WorldScene)
	if !ok {
		t.Fatalf("current scene is not a WorldScene")
	}
	return world.SceneName()
}

func TestNewAppLoadsStartScene(t *testing.T) {
	a := newTestApp(t)

	if got := sceneName(t, a); got != "Village" {
		t.Errorf("scene = %s, want Village", got)
	}
	if a.Engine().ActiveSlot() != 1 {
		t.Errorf("ActiveSlot = %d, want 1", a.Engine().ActiveSlot())
	}
	if w, h := a.Layout(1920, 1080); w != ScreenWidth || h != ScreenHeight {
		t.Errorf("Layout = %dx%d", w, h)
	}
}

func TestNewAppBadScenesDir(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Backend = config.BackendMemory
	cfg.Verbose = true

	if _, err := NewApp(Config{Engine: cfg, ScenesDir: t.TempDir()}); err == nil {
		t.Error("expected error when the start scene cannot be loaded")
	}
}

func TestSwitchSlotLoadsSavedScene(t *testing.T) {
	a := newTestApp(t)

	if !a.GetSceneManager().LoadScene("Cave") {
		t.Fatal("LoadScene(Cave) failed")
	}
	a.player.x = 42
	a.save()
	if a.status != "saved to slot 1" {
		t.Fatalf("status = %q", a.status)
	}

	if err := a.switchSlot(2); err != nil {
		t.Fatalf("switchSlot(2) failed: %v", err)
	}
	if got := sceneName(t, a); got != "Village" {
		t.Errorf("empty slot should start in Village, got %s", got)
	}

	if err := a.switchSlot(1); err != nil {
		t.Fatalf("switchSlot(1) failed: %v", err)
	}
	if got := sceneName(t, a); got != "Cave" {
		t.Errorf("slot 1 scene = %s, want Cave", got)
	}
	if a.player.x != 42 {
		t.Errorf("player x = %v, want 42", a.player.x)
	}
}
