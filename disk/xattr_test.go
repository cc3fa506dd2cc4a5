package disk

import (
	"path/filepath"
	"testing"
)

func TestWriteAndReadFormatTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vdisk")
	bd, err := Create(path, 4096*16, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	bd.Close()

	tag := "m=20;uuid=test-uuid"
	if err := WriteFormatTag(path, tag); err != nil {
		t.Skipf("extended attributes unsupported on this filesystem: %v", err)
	}

	got, err := ReadFormatTag(path)
	if err != nil {
		t.Fatalf("ReadFormatTag: %v", err)
	}
	if got != tag {
		t.Fatalf("ReadFormatTag = %q, want %q", got, tag)
	}
}
