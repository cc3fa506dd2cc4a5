package sfs

import (
	"encoding/binary"

	"github.com/simplefs/go-sfs/disk"
)

const (
	sbOffTotalBlockCount  = 0
	sbOffCurrentFileCount = 4
	sbOffCurrentOpenCount = 8
	sbOffVolumeUUID       = 12
	sbVolumeUUIDLen       = 16
	sbOffOpenTable        = sbOffVolumeUUID + sbVolumeUUIDLen // 28

	openTableSlotSize       = 128
	otsOffOccupied          = 0
	otsOffDirEntryIndex     = 1
	otsOffMode              = 3
	otsOffName              = 7
	otsNameFieldLen         = MaxFilenameLen + 1 // +1 for NUL terminator

	sbChecksummedLen = sbOffOpenTable + int(MaxOpenFiles)*openTableSlotSize
	sbOffChecksum    = sbChecksummedLen
)

// openTableSlot is one of the 16 fixed slots tracking currently-open files
// (spec §3 OpenTable). mode lives here, per slot, rather than on the
// directory entry (§9 resolution of the source's mode-persistence ambiguity).
type openTableSlot struct {
	occupied      bool
	dirEntryIndex uint16
	mode          int32
	name          string
}

// superblock is the global state block (spec §3, §4.3).
type superblock struct {
	totalBlockCount  uint32
	currentFileCount uint32
	currentOpenCount uint32
	volumeUUID       [16]byte
	openTable        [MaxOpenFiles]openTableSlot
}

func (sb *superblock) toBytes() []byte {
	b := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(b[sbOffTotalBlockCount:], sb.totalBlockCount)
	binary.LittleEndian.PutUint32(b[sbOffCurrentFileCount:], sb.currentFileCount)
	binary.LittleEndian.PutUint32(b[sbOffCurrentOpenCount:], sb.currentOpenCount)
	copy(b[sbOffVolumeUUID:sbOffVolumeUUID+sbVolumeUUIDLen], sb.volumeUUID[:])

	for i := int64(0); i < MaxOpenFiles; i++ {
		slot := sb.openTable[i]
		off := sbOffOpenTable + int(i)*openTableSlotSize
		if slot.occupied {
			b[off+otsOffOccupied] = 1
		}
		binary.LittleEndian.PutUint16(b[off+otsOffDirEntryIndex:], slot.dirEntryIndex)
		binary.LittleEndian.PutUint32(b[off+otsOffMode:], uint32(slot.mode))
		putFixedString(b[off+otsOffName:off+otsOffName+otsNameFieldLen], slot.name)
	}

	binary.LittleEndian.PutUint32(b[sbOffChecksum:], checksum(b[:sbChecksummedLen]))
	return b
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if int64(len(b)) != BlockSize {
		return nil, newError(InvariantViolation, "superblock block must be %d bytes, got %d", BlockSize, len(b))
	}
	want := binary.LittleEndian.Uint32(b[sbOffChecksum:])
	got := checksum(b[:sbChecksummedLen])
	if want != got {
		return nil, newError(InvariantViolation, "superblock checksum mismatch: have %08x, want %08x", got, want)
	}

	sb := &superblock{
		totalBlockCount:  binary.LittleEndian.Uint32(b[sbOffTotalBlockCount:]),
		currentFileCount: binary.LittleEndian.Uint32(b[sbOffCurrentFileCount:]),
		currentOpenCount: binary.LittleEndian.Uint32(b[sbOffCurrentOpenCount:]),
	}
	copy(sb.volumeUUID[:], b[sbOffVolumeUUID:sbOffVolumeUUID+sbVolumeUUIDLen])

	for i := int64(0); i < MaxOpenFiles; i++ {
		off := sbOffOpenTable + int(i)*openTableSlotSize
		sb.openTable[i] = openTableSlot{
			occupied:      b[off+otsOffOccupied] != 0,
			dirEntryIndex: binary.LittleEndian.Uint16(b[off+otsOffDirEntryIndex:]),
			mode:          int32(binary.LittleEndian.Uint32(b[off+otsOffMode:])),
			name:          getFixedString(b[off+otsOffName : off+otsOffName+otsNameFieldLen]),
		}
	}
	return sb, nil
}

func readSuperblock(bd *disk.BlockDevice) (*superblock, error) {
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(SuperblockIndex, buf); err != nil {
		return nil, wrapError(IoError, err, "reading superblock")
	}
	return superblockFromBytes(buf)
}

func writeSuperblock(bd *disk.BlockDevice, sb *superblock) error {
	if err := bd.WriteBlock(SuperblockIndex, sb.toBytes()); err != nil {
		return wrapError(IoError, err, "writing superblock")
	}
	return nil
}

// findFreeOpenSlot returns the lowest-index unoccupied open-table slot.
func (sb *superblock) findFreeOpenSlot() (int, bool) {
	for i := 0; i < int(MaxOpenFiles); i++ {
		if !sb.openTable[i].occupied {
			return i, true
		}
	}
	return 0, false
}
