// Package sfs implements a simple single-user file system backed by a flat
// sequence of fixed-size blocks in a regular file: a superblock, a
// free-block bitmap, a fixed 128-entry root directory, a 128-entry FCB
// table, and per-file index blocks (spec §1–§4).
package sfs

import (
	"fmt"

	googleuuid "github.com/google/uuid"
	satoriuuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/simplefs/go-sfs/disk"
)

// Logger is the package-level logging backbone (A1). Callers may replace it
// (e.g. with a differently configured logrus.Logger) before calling Format
// or Mount.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Mode selects how an open file descriptor may be used (spec §4.6).
type Mode int32

const (
	// ModeRead opens a file for sequential reading from its shared read cursor.
	ModeRead Mode = iota
	// ModeAppend opens a file for appending past its current end.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeAppend:
		return "APPEND"
	default:
		return "UNKNOWN"
	}
}

// FileSystem is a mounted instance of the on-disk format, owned by the
// caller. There is no package-level mutable mount state (§9): every
// operation is a method on a *FileSystem value, and two FileSystem values
// never share a backing file under correct use.
type FileSystem struct {
	device    *disk.BlockDevice
	path      string
	log       *logrus.Entry
	sessionID googleuuid.UUID
}

// Format initializes a fresh backing file at path sized 2^m bytes and
// returns it mounted (spec §4.7). It fails if the requested size does not
// leave room for the fixed metadata region, or overflows the four-block
// bitmap's addressable range (spec §3).
func Format(path string, m uint) (*FileSystem, error) {
	if m > 62 {
		return nil, newError(InvariantViolation, "disk-size exponent %d is too large", m)
	}
	size := int64(1) << m
	if size%BlockSize != 0 {
		return nil, newError(InvariantViolation, "disk size 2^%d is not a multiple of block size %d", m, BlockSize)
	}
	totalBlocks := size / BlockSize
	if totalBlocks < minValidBlockCount {
		return nil, newError(NoSpace, "disk of %d blocks is too small to hold fixed metadata (need >= %d)", totalBlocks, minValidBlockCount)
	}
	if totalBlocks > maxValidBlockCount {
		return nil, newError(NoSpace, "disk of %d blocks exceeds the bitmap's addressable range (max %d)", totalBlocks, maxValidBlockCount)
	}

	bd, err := disk.Create(path, size, BlockSize)
	if err != nil {
		return nil, wrapError(IoError, err, "creating backing file %s", path)
	}

	volumeUUID := satoriuuid.NewV4()
	fs := newFileSystem(bd, path)
	fs.log = fs.log.WithField("volume_uuid", volumeUUID.String())

	sb := &superblock{totalBlockCount: uint32(totalBlocks)}
	copy(sb.volumeUUID[:], volumeUUID.Bytes())
	if err := writeSuperblock(bd, sb); err != nil {
		return nil, err
	}

	if err := formatBitmap(bd); err != nil {
		return nil, err
	}
	if err := formatDirectory(bd); err != nil {
		return nil, err
	}
	if err := formatFCBTable(bd); err != nil {
		return nil, err
	}

	// Best-effort backing-file tagging (A5): extended attributes are not
	// supported by every OS/filesystem combination, so a failure here must
	// never fail format() itself.
	tag := fmt.Sprintf("m=%d;uuid=%s", m, volumeUUID.String())
	if err := disk.WriteFormatTag(path, tag); err != nil {
		fs.log.WithError(err).Debug("could not write format tag (unsupported on this filesystem?)")
	}

	fs.log.WithField("total_blocks", totalBlocks).Info("formatted volume")
	return fs, nil
}

func formatBitmap(bd *disk.BlockDevice) error {
	for n := int64(0); n < BitmapBlockCount; n++ {
		if err := bd.WriteBlock(BitmapStartBlock+n, make([]byte, BlockSize)); err != nil {
			return wrapError(IoError, err, "zeroing bitmap block %d", n)
		}
	}
	for bit := int64(0); bit < DataStartBlock; bit++ {
		if err := updateBitmap(bd, bit, true); err != nil {
			return err
		}
	}
	return nil
}

func formatDirectory(bd *disk.BlockDevice) error {
	block := make([]byte, BlockSize)
	free := freeDirectoryEntry().toBytes()
	for slot := int64(0); slot < EntriesPerBlock; slot++ {
		copy(block[slot*dirEntrySize:], free)
	}
	for n := int64(0); n < DirectoryBlockCount; n++ {
		if err := bd.WriteBlock(DirectoryStartBlock+n, block); err != nil {
			return wrapError(IoError, err, "formatting directory block %d", n)
		}
	}
	return nil
}

func formatFCBTable(bd *disk.BlockDevice) error {
	block := make([]byte, BlockSize)
	free := freeFCB().toBytes()
	for slot := int64(0); slot < EntriesPerBlock; slot++ {
		copy(block[slot*fcbSize:], free)
	}
	for n := int64(0); n < FCBBlockCount; n++ {
		if err := bd.WriteBlock(FCBStartBlock+n, block); err != nil {
			return wrapError(IoError, err, "formatting FCB block %d", n)
		}
	}
	return nil
}

// Mount opens an existing backing file as an SFS volume.
func Mount(path string) (*FileSystem, error) {
	bd, err := disk.Open(path, BlockSize)
	if err != nil {
		return nil, wrapError(IoError, err, "opening backing file %s", path)
	}
	sb, err := readSuperblock(bd)
	if err != nil {
		bd.Close()
		return nil, err
	}
	if int64(sb.totalBlockCount) != bd.TotalBlocks() {
		bd.Close()
		return nil, newError(InvariantViolation, "superblock reports %d total blocks but backing file has %d", sb.totalBlockCount, bd.TotalBlocks())
	}

	fs := newFileSystem(bd, path)
	volUUID := satoriuuid.UUID{}
	copy(volUUID[:], sb.volumeUUID[:])
	fs.log = fs.log.WithField("volume_uuid", volUUID.String())
	fs.log.Debug("mounted volume")
	return fs, nil
}

func newFileSystem(bd *disk.BlockDevice, path string) *FileSystem {
	session := googleuuid.New()
	return &FileSystem{
		device:    bd,
		path:      path,
		sessionID: session,
		log:       Logger.WithFields(logrus.Fields{"path": path, "session": session.String()}),
	}
}

// Umount flushes and releases the backing file (spec §4.1).
func (fs *FileSystem) Umount() error {
	fs.log.Debug("unmounting volume")
	if err := fs.device.Close(); err != nil {
		return wrapError(IoError, err, "unmounting %s", fs.path)
	}
	return nil
}
