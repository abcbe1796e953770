package save

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/decker502/worldstate/pkg/config"
)

// exerciseBackend 对任意后端执行相同的读写删除检查
func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	if ok, err := backend.Exists(ctx, "slot_1"); err != nil || ok {
		t.Fatalf("Exists on empty backend = %v/%v", ok, err)
	}
	if _, err := backend.Load(ctx, "slot_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty backend err = %v, want ErrNotFound", err)
	}

	if err := backend.Save(ctx, "slot_1", []byte("scene: A\n")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := backend.Save(ctx, "slot_1", []byte("scene: B\n")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, err := backend.Load(ctx, "slot_1")
	if err != nil || string(data) != "scene: B\n" {
		t.Fatalf("Load = %q/%v, want overwritten payload", data, err)
	}
	if ok, _ := backend.Exists(ctx, "slot_1"); !ok {
		t.Error("Exists should be true after Save")
	}

	if err := backend.Delete(ctx, "slot_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := backend.Load(ctx, "slot_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete err = %v, want ErrNotFound", err)
	}
	if err := backend.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := OpenSQLiteBackend(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteBackend failed: %v", err)
	}
	defer backend.Close()
	exerciseBackend(t, backend)
}

func TestBoltBackend(t *testing.T) {
	backend, err := OpenBoltBackend(filepath.Join(t.TempDir(), "saves.bolt"))
	if err != nil {
		t.Fatalf("OpenBoltBackend failed: %v", err)
	}
	defer backend.Close()
	exerciseBackend(t, backend)
}

// TestBoltBackendPersists 关闭后重新打开仍能读到记录
func TestBoltBackendPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves.bolt")

	first, err := OpenBoltBackend(path)
	if err != nil {
		t.Fatalf("OpenBoltBackend failed: %v", err)
	}
	store := NewSlotStore(first, 4)
	if err := store.Save(ctx, 2, sampleRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first.Close()

	second, err := OpenBoltBackend(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()
	if _, ok := NewSlotStore(second, 4).Load(ctx, 2); !ok {
		t.Error("record lost after reopen")
	}
}

func TestGdataBackend(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, ".local", "share"))

	backend, err := OpenGdataBackend("worldstate_test")
	if err != nil {
		t.Skipf("gdata not available: %v", err)
	}
	exerciseBackend(t, backend)
}

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.EngineConfig
		wantErr bool
	}{
		{"Memory", &config.EngineConfig{Backend: config.BackendMemory}, false},
		{"SQLite", &config.EngineConfig{Backend: config.BackendSQLite, StoragePath: filepath.Join(t.TempDir(), "a.db")}, false},
		{"Bolt", &config.EngineConfig{Backend: config.BackendBolt, StoragePath: filepath.Join(t.TempDir(), "a.bolt")}, false},
		{"Bolt without path", &config.EngineConfig{Backend: config.BackendBolt}, true},
		{"Unknown", &config.EngineConfig{Backend: "redis"}, true},
		{"Nil config", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := OpenBackend(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenBackend err = %v, wantErr %v", err, tt.wantErr)
			}
			if backend != nil {
				backend.Close()
			}
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := NewMemoryBackend()
	if err := backend.Save(ctx, "slot_1", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save err = %v, want context.Canceled", err)
	}
}
