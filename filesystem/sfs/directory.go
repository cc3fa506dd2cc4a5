package sfs

import (
	"encoding/binary"

	"github.com/simplefs/go-sfs/disk"
)

const (
	deNameFieldLen  = MaxFilenameLen + 1 // +1 for NUL terminator
	deOffName       = 0
	deOffFileSize   = deOffName + deNameFieldLen // 110
	deOffFCBIndex   = deOffFileSize + 4          // 114
	deOffMode       = deOffFCBIndex + 4          // 118
	deOffChecksum   = deOffMode + 4              // 122
	deChecksummedLen = deOffChecksum
)

// directoryEntry is one of the 128 fixed 128-byte root-directory records
// (spec §3, §4.4). A free entry has FileSize/FCBIndex/Mode all -1 and an
// empty name.
type directoryEntry struct {
	name     string
	fileSize int32
	fcbIndex int32
	mode     int32
}

func freeDirectoryEntry() directoryEntry {
	return directoryEntry{fileSize: -1, fcbIndex: -1, mode: -1}
}

func (de directoryEntry) isFree() bool {
	return de.fileSize < 0
}

func (de directoryEntry) toBytes() []byte {
	b := make([]byte, dirEntrySize)
	putFixedString(b[deOffName:deOffName+deNameFieldLen], de.name)
	binary.LittleEndian.PutUint32(b[deOffFileSize:], uint32(de.fileSize))
	binary.LittleEndian.PutUint32(b[deOffFCBIndex:], uint32(de.fcbIndex))
	binary.LittleEndian.PutUint32(b[deOffMode:], uint32(de.mode))
	binary.LittleEndian.PutUint32(b[deOffChecksum:], checksum(b[:deChecksummedLen]))
	return b
}

func directoryEntryFromBytes(b []byte) (directoryEntry, error) {
	if int64(len(b)) != dirEntrySize {
		return directoryEntry{}, newError(InvariantViolation, "directory entry must be %d bytes, got %d", dirEntrySize, len(b))
	}
	want := binary.LittleEndian.Uint32(b[deOffChecksum:])
	got := checksum(b[:deChecksummedLen])
	if want != got {
		return directoryEntry{}, newError(InvariantViolation, "directory entry checksum mismatch: have %08x, want %08x", got, want)
	}
	return directoryEntry{
		name:     getFixedString(b[deOffName : deOffName+deNameFieldLen]),
		fileSize: int32(binary.LittleEndian.Uint32(b[deOffFileSize:])),
		fcbIndex: int32(binary.LittleEndian.Uint32(b[deOffFCBIndex:])),
		mode:     int32(binary.LittleEndian.Uint32(b[deOffMode:])),
	}, nil
}

// directoryBlockAndSlot returns the block index and in-block slot for
// directory index d (spec §4.4: entry d lives in block 5 + d/32 at slot d%32).
func directoryBlockAndSlot(d int64) (block int64, slot int64) {
	return DirectoryStartBlock + d/EntriesPerBlock, d % EntriesPerBlock
}

func readDirectoryEntry(bd *disk.BlockDevice, d int64) (directoryEntry, error) {
	block, slot := directoryBlockAndSlot(d)
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(block, buf); err != nil {
		return directoryEntry{}, wrapError(IoError, err, "reading directory block %d for entry %d", block, d)
	}
	off := slot * dirEntrySize
	return directoryEntryFromBytes(buf[off : off+dirEntrySize])
}

func writeDirectoryEntry(bd *disk.BlockDevice, d int64, de directoryEntry) error {
	block, slot := directoryBlockAndSlot(d)
	buf := make([]byte, BlockSize)
	if err := bd.ReadBlock(block, buf); err != nil {
		return wrapError(IoError, err, "reading directory block %d to update entry %d", block, d)
	}
	off := slot * dirEntrySize
	copy(buf[off:off+dirEntrySize], de.toBytes())
	if err := bd.WriteBlock(block, buf); err != nil {
		return wrapError(IoError, err, "writing directory block %d for entry %d", block, d)
	}
	return nil
}

// findFreeDirectoryEntry returns the lowest-index free directory entry.
func findFreeDirectoryEntry(bd *disk.BlockDevice) (int64, error) {
	for d := int64(0); d < MaxFiles; d++ {
		de, err := readDirectoryEntry(bd, d)
		if err != nil {
			return 0, err
		}
		if de.isFree() {
			return d, nil
		}
	}
	return 0, newError(NoSpace, "root directory is full (%d entries)", MaxFiles)
}

// findDirectoryEntryByName returns the lowest-index entry with an exact,
// case-sensitive, byte-wise name match (spec §4.4).
func findDirectoryEntryByName(bd *disk.BlockDevice, name string) (int64, directoryEntry, error) {
	for d := int64(0); d < MaxFiles; d++ {
		de, err := readDirectoryEntry(bd, d)
		if err != nil {
			return 0, directoryEntry{}, err
		}
		if !de.isFree() && de.name == name {
			return d, de, nil
		}
	}
	return 0, directoryEntry{}, newError(NotFound, "no such file: %q", name)
}

// clearDirectoryEntry resets entry d to its free state.
func clearDirectoryEntry(bd *disk.BlockDevice, d int64) error {
	return writeDirectoryEntry(bd, d, freeDirectoryEntry())
}
