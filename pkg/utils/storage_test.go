package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareDatabasePathCreatesParent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "saves.db")

	got, err := PrepareDatabasePath(path)
	if err != nil {
		t.Fatalf("PrepareDatabasePath failed: %v", err)
	}
	if got != path {
		t.Errorf("path = %s, want %s", got, path)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestPrepareDatabasePathCleans(t *testing.T) {
	dir := t.TempDir()
	got, err := PrepareDatabasePath(dir + "/a/../saves.bolt")
	if err != nil {
		t.Fatalf("PrepareDatabasePath failed: %v", err)
	}
	if want := filepath.Join(dir, "saves.bolt"); got != want {
		t.Errorf("path = %s, want %s", got, want)
	}
}

func TestPrepareDatabasePathEmpty(t *testing.T) {
	if _, err := PrepareDatabasePath("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestDesktopStorageRoot(t *testing.T) {
	if root := StorageRoot(); root != "" {
		t.Errorf("StorageRoot = %q, want empty on desktop", root)
	}
	if err := EnsureStorageDir(); err != nil {
		t.Errorf("EnsureStorageDir failed: %v", err)
	}
}
