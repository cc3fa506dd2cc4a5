package sfs

import (
	"encoding/binary"

	"github.com/simplefs/go-sfs/disk"
)

const (
	fcbOffUsed            = 0
	fcbOffUsedBlockCount  = fcbOffUsed + 1            // 1
	fcbOffIndexBlockIndex = fcbOffUsedBlockCount + 4   // 5
	fcbOffLastItemOffset  = fcbOffIndexBlockIndex + 4  // 9
	fcbOffLastReadOffset  = fcbOffLastItemOffset + 4   // 13
	fcbOffChecksum        = fcbOffLastReadOffset + 4   // 17
	fcbChecksummedLen     = fcbOffChecksum
)

// fcb is a file control block (spec §3, §4.5).
type fcb struct {
	used            bool
	usedBlockCount  uint32
	indexBlockIndex int32
	lastItemOffset  int32
	lastReadOffset  int32
}

func freeFCB() fcb {
	return fcb{indexBlockIndex: -1, lastItemOffset: 0, lastReadOffset: -1}
}

func (f fcb) toBytes() []byte {
	b := make([]byte, fcbSize)
	if f.used {
		b[fcbOffUsed] = 1
	}
	binary.LittleEndian.PutUint32(b[fcbOffUsedBlockCount:], f.usedBlockCount)
	binary.LittleEndian.PutUint32(b[fcbOffIndexBlockIndex:], uint32(f.indexBlockIndex))
	binary.LittleEndian.PutUint32(b[fcbOffLastItemOffset:], uint32(f.lastItemOffset))
	binary.LittleEndian.PutUint32(b[fcbOffLastReadOffset:], uint32(f.lastReadOffset))
	binary.LittleEndian.PutUint32(b[fcbOffChecksum:], checksum(b[:fcbChecksummedLen]))
	return b
}

func fcbFromBytes(b []byte) (fcb, error) {
	if int64(len(b)) != fcbSize {
		return fcb{}, newError(InvariantViolation, "FCB must be %d bytes, got %d", fcbSize, len(b))
	}
	want := binary.LittleEndian.Uint32(b[fcbOffChecksum:])
	got := checksum(b[:fcbChecksummedLen])
	if want != got {
		return fcb{}, newError(InvariantViolation, "FCB checksum mismatch: have %08x, want %08x", got, want)
	}
	return fcb{
		used:            b[fcbOffUsed] != 0,
		usedBlockCount:  binary.LittleEndian.Uint32(b[fcbOffUsedBlockCount:]),
		indexBlockIndex: int32(binary.LittleEndian.Uint32(b[fcbOffIndexBlockIndex:])),
		lastItemOffset:  int32(binary.LittleEndian.Uint32(b[fcbOffLastItemOffset:])),
		lastReadOffset:  int32(binary.LittleEndian.Uint32(b[fcbOffLastReadOffset:])),
	}, nil
}

// fcbBlockAndSlot returns the block index and in-block slot for FCB index f
// (spec §4.5: FCB f lives in block 9 + f/32 at slot f%32).
func fcbBlockAndSlot(f int64) (block int64, slot int64) {
	return FCBStartBlock + f/EntriesPerBlock, f % EntriesPerBlock
}

func readFCB(bd *disk.BlockDevice, f int64) (fcb, error) {
	block, slot := fcbBlockAndSlot(f)
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(block, buf); err != nil {
		return fcb{}, wrapError(IoError, err, "reading FCB block %d for FCB %d", block, f)
	}
	off := slot * fcbSize
	return fcbFromBytes(buf[off : off+fcbSize])
}

func writeFCB(bd *disk.BlockDevice, f int64, rec fcb) error {
	block, slot := fcbBlockAndSlot(f)
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(block, buf); err != nil {
		return wrapError(IoError, err, "reading FCB block %d to update FCB %d", block, f)
	}
	off := slot * fcbSize
	copy(buf[off:off+fcbSize], rec.toBytes())
	if err := bd.WriteBlock(block, buf); err != nil {
		return wrapError(IoError, err, "writing FCB block %d for FCB %d", block, f)
	}
	return nil
}

// findFreeFCB returns the lowest-index unused FCB.
func findFreeFCB(bd *disk.BlockDevice) (int64, error) {
	for f := int64(0); f < MaxFiles; f++ {
		rec, err := readFCB(bd, f)
		if err != nil {
			return 0, err
		}
		if !rec.used {
			return f, nil
		}
	}
	return 0, newError(NoSpace, "FCB table is full (%d entries)", MaxFiles)
}

func clearFCB(bd *disk.BlockDevice, f int64) error {
	return writeFCB(bd, f, freeFCB())
}
