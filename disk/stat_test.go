package disk

import (
	"path/filepath"
	"testing"
)

func TestBackingFileTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vdisk")
	bd, err := Create(path, 4096*16, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	bd.Close()

	ft, err := BackingFileTimes(path)
	if err != nil {
		t.Fatalf("BackingFileTimes: %v", err)
	}
	if ft.ModTime.IsZero() {
		t.Fatalf("ModTime is zero, want a real modification time")
	}
	if ft.AccessTime.IsZero() {
		t.Fatalf("AccessTime is zero, want a real access time")
	}
}
