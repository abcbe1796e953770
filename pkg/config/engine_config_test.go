package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestLoadEngineConfigDefaults 空文件得到全部默认值
func TestLoadEngineConfigDefaults(t *testing.T) {
	cfg, err := LoadEngineConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}

	if cfg.Backend != BackendGdata {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendGdata)
	}
	if cfg.SlotCount != MaxSlots {
		t.Errorf("SlotCount = %d, want %d", cfg.SlotCount, MaxSlots)
	}
	if cfg.MinSaveInterval != 2.0 {
		t.Errorf("MinSaveInterval = %v, want 2.0", cfg.MinSaveInterval)
	}
	if cfg.RescanDelayFrames != 1 {
		t.Errorf("RescanDelayFrames = %d, want 1", cfg.RescanDelayFrames)
	}
}

func TestLoadEngineConfigValues(t *testing.T) {
	cfg, err := LoadEngineConfig(writeConfig(t, `
appName: platformer
backend: SQLite
slotCount: 3
minSaveInterval: 5
`))
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.StoragePath != "data/saves.db" {
		t.Errorf("StoragePath = %q, want default sqlite path", cfg.StoragePath)
	}
	if cfg.SlotCount != 3 || cfg.MinSaveInterval != 5 {
		t.Errorf("unexpected values: %+v", cfg)
	}
}

func TestLoadEngineConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown backend", "backend: redis\n"},
		{"Too many slots", "slotCount: 9\n"},
		{"Negative interval", "minSaveInterval: -1\n"},
		{"Broken yaml", "backend: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadEngineConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEngineConfigMissingFile(t *testing.T) {
	if _, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestApplyEnvOverrides 环境变量覆盖文件配置
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WORLDSTATE_BACKEND", "memory")
	t.Setenv("WORLDSTATE_SLOT_COUNT", "2")

	cfg := DefaultEngineConfig()
	cfg.AppName = "from-file"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.SlotCount != 2 {
		t.Errorf("SlotCount = %d, want 2", cfg.SlotCount)
	}
	if cfg.AppName != "from-file" {
		t.Errorf("AppName = %q, unset env should keep file value", cfg.AppName)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("WORLDSTATE_SLOT_COUNT", "many")

	cfg := DefaultEngineConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected parse error")
	}
}
