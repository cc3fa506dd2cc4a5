package disk

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCreateAndReadWriteBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vdisk")
	bd, err := Create(path, 4096*16, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	defer bd.Close()

	if bd.TotalBlocks() != 16 {
		t.Fatalf("expected 16 blocks, got %d", bd.TotalBlocks())
	}

	want := bytes.Repeat([]byte{0xAB}, 4096)
	if err := bd.WriteBlock(5, want); err != nil {
		t.Fatalf("WriteBlock error: %v", err)
	}

	got := make([]byte, 4096)
	if err := bd.ReadBlock(5, got); err != nil {
		t.Fatalf("ReadBlock error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back different bytes than written")
	}

	// unwritten blocks must still read as zero
	zero := make([]byte, 4096)
	other := make([]byte, 4096)
	if err := bd.ReadBlock(0, other); err != nil {
		t.Fatalf("ReadBlock error: %v", err)
	}
	if !bytes.Equal(other, zero) {
		t.Fatalf("expected freshly created block to be zero-filled")
	}
}

func TestReadWriteBlockOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vdisk")
	bd, err := Create(path, 4096*4, 4096)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	defer bd.Close()

	buf := make([]byte, 4096)
	if err := bd.ReadBlock(4, buf); err == nil {
		t.Fatalf("expected error reading out-of-range block")
	}
	if err := bd.WriteBlock(-1, buf); err == nil {
		t.Fatalf("expected error writing negative block index")
	}
}

func TestCreateRejectsMisalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vdisk")
	if _, err := Create(path, 4096*4+1, 4096); err == nil {
		t.Fatalf("expected Create to reject a size that is not a multiple of block size")
	}
}
