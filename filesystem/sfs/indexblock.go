package sfs

import (
	"encoding/binary"

	"github.com/simplefs/go-sfs/disk"
)

const (
	ibChecksummedLen = indexBlockPointerSlots * 4 // 4092
	ibOffChecksum    = ibChecksummedLen            // 4092
)

// indexBlockFromBytes decodes a raw index block into its data-block
// pointers (spec §3, §4.5/§4.6). Slot i holds 0 when unused; 0 can never be
// a legitimate data-block pointer since block 0 is always the superblock.
func indexBlockFromBytes(b []byte) ([]uint32, error) {
	if int64(len(b)) != BlockSize {
		return nil, newError(InvariantViolation, "index block must be %d bytes, got %d", BlockSize, len(b))
	}
	want := binary.LittleEndian.Uint32(b[ibOffChecksum:])
	got := checksum(b[:ibChecksummedLen])
	if want != got {
		return nil, newError(InvariantViolation, "index block checksum mismatch: have %08x, want %08x", got, want)
	}
	pointers := make([]uint32, indexBlockPointerSlots)
	for i := range pointers {
		pointers[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return pointers, nil
}

func indexBlockToBytes(pointers []uint32) []byte {
	b := make([]byte, BlockSize)
	for i := int64(0); i < indexBlockPointerSlots; i++ {
		var v uint32
		if i < int64(len(pointers)) {
			v = pointers[i]
		}
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	binary.LittleEndian.PutUint32(b[ibOffChecksum:], checksum(b[:ibChecksummedLen]))
	return b
}

func readIndexBlock(bd *disk.BlockDevice, blockIndex int64) ([]uint32, error) {
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(blockIndex, buf); err != nil {
		return nil, wrapError(IoError, err, "reading index block %d", blockIndex)
	}
	return indexBlockFromBytes(buf)
}

func writeIndexBlock(bd *disk.BlockDevice, blockIndex int64, pointers []uint32) error {
	if err := bd.WriteBlock(blockIndex, indexBlockToBytes(pointers)); err != nil {
		return wrapError(IoError, err, "writing index block %d", blockIndex)
	}
	return nil
}
