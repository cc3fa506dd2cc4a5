package disk

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestSnapshotLZ4RoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.vdisk")
	snapPath := filepath.Join(dir, "snap.lz4")
	dstPath := filepath.Join(dir, "restored.vdisk")

	bd, err := Create(srcPath, 4096*16, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	want := bytes.Repeat([]byte{0x5A}, 4096)
	if err := bd.WriteBlock(3, want); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := bd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := ExportSnapshotLZ4(srcPath, snapPath); err != nil {
		t.Fatalf("ExportSnapshotLZ4: %v", err)
	}
	if err := ImportSnapshotLZ4(snapPath, dstPath); err != nil {
		t.Fatalf("ImportSnapshotLZ4: %v", err)
	}

	restored, err := Open(dstPath, 4096)
	if err != nil {
		t.Fatalf("Open restored: %v", err)
	}
	defer restored.Close()

	got := make([]byte, 4096)
	if err := restored.ReadBlock(3, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("restored block 3 does not match original")
	}
}

func TestSnapshotXZRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.vdisk")
	snapPath := filepath.Join(dir, "snap.xz")
	dstPath := filepath.Join(dir, "restored.vdisk")

	bd, err := Create(srcPath, 4096*16, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	want := bytes.Repeat([]byte{0xC3}, 4096)
	if err := bd.WriteBlock(7, want); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := bd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := ExportSnapshotXZ(srcPath, snapPath); err != nil {
		t.Fatalf("ExportSnapshotXZ: %v", err)
	}
	if err := ImportSnapshotXZ(snapPath, dstPath); err != nil {
		t.Fatalf("ImportSnapshotXZ: %v", err)
	}

	restored, err := Open(dstPath, 4096)
	if err != nil {
		t.Fatalf("Open restored: %v", err)
	}
	defer restored.Close()

	got := make([]byte, 4096)
	if err := restored.ReadBlock(7, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("restored block 7 does not match original")
	}
}
