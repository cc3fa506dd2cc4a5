package sfs

import (
	"github.com/sirupsen/logrus"
)

// validateFd checks that fd addresses a slot in the open table (spec §4.6);
// it does not check occupancy, which callers verify against a loaded
// superblock.
func validateFd(fd int) error {
	if fd < 0 || int64(fd) >= MaxOpenFiles {
		return newError(BadFd, "fd %d out of range [0,%d)", fd, MaxOpenFiles)
	}
	return nil
}

// Create reserves a directory entry, an FCB, and the one data block that
// holds the file's (initially empty) index block (spec §4.6 Create).
func (fs *FileSystem) Create(name string) (err error) {
	log := fs.log.WithField("op", "create").WithField("name", name)
	defer logResult(log, &err)

	if err := validateFilename(name); err != nil {
		return err
	}

	sb, err := readSuperblock(fs.device)
	if err != nil {
		return err
	}
	if _, _, err := findDirectoryEntryByName(fs.device, name); err == nil {
		return newError(AlreadyExists, "file %q already exists", name)
	}
	if int64(sb.currentFileCount) >= MaxFiles {
		return newError(NoSpace, "root directory already holds %d files", MaxFiles)
	}

	d, err := findFreeDirectoryEntry(fs.device)
	if err != nil {
		return err
	}
	f, err := findFreeFCB(fs.device)
	if err != nil {
		return err
	}

	indexBlockIdx, err := allocateBlock(fs.device, int64(sb.totalBlockCount))
	if err != nil {
		return err
	}
	if err := writeIndexBlock(fs.device, indexBlockIdx, nil); err != nil {
		return err
	}

	rec := fcb{
		used:            true,
		usedBlockCount:  0,
		indexBlockIndex: int32(indexBlockIdx),
		lastItemOffset:  0,
		lastReadOffset:  0,
	}
	if err := writeFCB(fs.device, f, rec); err != nil {
		return err
	}

	de := directoryEntry{name: name, fileSize: 0, fcbIndex: int32(f), mode: -1}
	if err := writeDirectoryEntry(fs.device, d, de); err != nil {
		return err
	}

	sb.currentFileCount++
	return writeSuperblock(fs.device, sb)
}

// Open reserves an open-table slot recording name, directory index, and the
// per-slot mode (spec §4.6 Open, §9).
func (fs *FileSystem) Open(name string, mode Mode) (fd int, err error) {
	log := fs.log.WithField("op", "open").WithField("name", name).WithField("mode", mode.String())
	defer logResult(log, &err)

	sb, err := readSuperblock(fs.device)
	if err != nil {
		return 0, err
	}
	if int64(sb.currentOpenCount) >= MaxOpenFiles {
		return 0, newError(TooManyOpen, "open table already holds %d entries", MaxOpenFiles)
	}
	d, _, err := findDirectoryEntryByName(fs.device, name)
	if err != nil {
		return 0, err
	}
	slot, ok := sb.findFreeOpenSlot()
	if !ok {
		return 0, newError(TooManyOpen, "no free open-table slot despite open count %d", sb.currentOpenCount)
	}

	sb.openTable[slot] = openTableSlot{
		occupied:      true,
		dirEntryIndex: uint16(d),
		mode:          int32(mode),
		name:          name,
	}
	sb.currentOpenCount++
	if err := writeSuperblock(fs.device, sb); err != nil {
		return 0, err
	}
	return slot, nil
}

// Close releases fd's open-table slot and resets the file's shared read
// cursor (spec §4.6 Close, §9: the cursor resets on Close, not on the next Open).
func (fs *FileSystem) Close(fd int) (err error) {
	log := fs.log.WithField("op", "close").WithField("fd", fd)
	defer logResult(log, &err)

	if err := validateFd(fd); err != nil {
		return err
	}
	sb, err := readSuperblock(fs.device)
	if err != nil {
		return err
	}
	slot := sb.openTable[fd]
	if !slot.occupied {
		return newError(BadFd, "fd %d is not open", fd)
	}

	de, err := readDirectoryEntry(fs.device, int64(slot.dirEntryIndex))
	if err != nil {
		return err
	}
	rec, err := readFCB(fs.device, int64(de.fcbIndex))
	if err != nil {
		return err
	}
	rec.lastReadOffset = 0
	if err := writeFCB(fs.device, int64(de.fcbIndex), rec); err != nil {
		return err
	}

	sb.openTable[fd] = openTableSlot{}
	sb.currentOpenCount--
	return writeSuperblock(fs.device, sb)
}

// GetSize resolves fd through the open table to its directory entry and
// returns that entry's file_size (spec §4.6 GetSize, §9: fd is always an
// open-table slot).
func (fs *FileSystem) GetSize(fd int) (size int64, err error) {
	log := fs.log.WithField("op", "getsize").WithField("fd", fd)
	defer logResult(log, &err)

	if err := validateFd(fd); err != nil {
		return 0, err
	}
	sb, err := readSuperblock(fs.device)
	if err != nil {
		return 0, err
	}
	slot := sb.openTable[fd]
	if !slot.occupied {
		return 0, newError(BadFd, "fd %d is not open", fd)
	}
	de, err := readDirectoryEntry(fs.device, int64(slot.dirEntryIndex))
	if err != nil {
		return 0, err
	}
	return int64(de.fileSize), nil
}

// Append writes up to one block boundary's worth of bytes to the end of the
// file open at fd (spec §4.6 Append). n must not exceed BlockSize: larger
// requests are rejected outright rather than looped across multiple blocks,
// preserving the inherited algorithm's single-boundary chunking exactly.
func (fs *FileSystem) Append(fd int, buf []byte, n int) (err error) {
	log := fs.log.WithField("op", "append").WithField("fd", fd).WithField("n", n)
	defer logResult(log, &err)

	if err := validateFd(fd); err != nil {
		return err
	}
	if n < 0 || int64(n) > BlockSize {
		return newError(InvariantViolation, "append of %d bytes exceeds the single-block-boundary contract (B=%d)", n, BlockSize)
	}
	if n > len(buf) {
		return newError(InvariantViolation, "append of %d bytes requested but buf only holds %d", n, len(buf))
	}

	sb, err := readSuperblock(fs.device)
	if err != nil {
		return err
	}
	slot := sb.openTable[fd]
	if !slot.occupied {
		return newError(BadFd, "fd %d is not open", fd)
	}
	if Mode(slot.mode) != ModeAppend {
		return newError(WrongMode, "fd %d is not open in append mode", fd)
	}

	d := int64(slot.dirEntryIndex)
	de, err := readDirectoryEntry(fs.device, d)
	if err != nil {
		return err
	}
	rec, err := readFCB(fs.device, int64(de.fcbIndex))
	if err != nil {
		return err
	}
	if rec.indexBlockIndex < 0 {
		return newError(InvariantViolation, "FCB %d for %q has no index block", de.fcbIndex, de.name)
	}
	pointers, err := readIndexBlock(fs.device, int64(rec.indexBlockIndex))
	if err != nil {
		return err
	}

	if rec.usedBlockCount == 0 {
		blockIdx, err := allocateBlock(fs.device, int64(sb.totalBlockCount))
		if err != nil {
			return err
		}
		pointers[0] = uint32(blockIdx)
		rec.usedBlockCount = 1
		rec.lastItemOffset = 0
	}

	// A write that cannot fit in what remains of the current last block
	// rolls over to a freshly allocated one; a write that lands exactly on
	// the block boundary fills the current block to B, which Invariant 4
	// allows only momentarily, until the next Append call rolls over.
	target := pointers[rec.usedBlockCount-1]
	writeOffset := rec.lastItemOffset
	if int64(rec.lastItemOffset)+int64(n) > BlockSize {
		if int64(rec.usedBlockCount) >= indexBlockPointerSlots {
			return newError(NoSpace, "file %q already uses all %d index-block pointer slots", de.name, indexBlockPointerSlots)
		}
		blockIdx, err := allocateBlock(fs.device, int64(sb.totalBlockCount))
		if err != nil {
			return err
		}
		pointers[rec.usedBlockCount] = uint32(blockIdx)
		rec.usedBlockCount++
		writeOffset = 0
		target = uint32(blockIdx)
	}

	data := make([]byte, BlockSize)
	if err := fs.device.ReadBlock(int64(target), data); err != nil {
		return wrapError(IoError, err, "reading data block %d for append", target)
	}
	copy(data[writeOffset:], buf[:n])
	if err := fs.device.WriteBlock(int64(target), data); err != nil {
		return wrapError(IoError, err, "writing data block %d for append", target)
	}
	rec.lastItemOffset = writeOffset + int32(n)

	if err := writeIndexBlock(fs.device, int64(rec.indexBlockIndex), pointers); err != nil {
		return err
	}
	de.fileSize += int32(n)
	if err := writeDirectoryEntry(fs.device, d, de); err != nil {
		return err
	}
	return writeFCB(fs.device, int64(de.fcbIndex), rec)
}

// Read copies up to n bytes starting at the file's shared read cursor into
// buf, advancing the cursor (spec §4.6 Read). It returns the number of bytes
// actually copied together with an EndOfFile-kind error if the cursor runs
// past file_size before n bytes are copied, mirroring io.Reader's
// non-zero-count-plus-error convention.
func (fs *FileSystem) Read(fd int, buf []byte, n int) (read int, err error) {
	log := fs.log.WithField("op", "read").WithField("fd", fd).WithField("n", n)
	defer logResult(log, &err)

	if err := validateFd(fd); err != nil {
		return 0, err
	}
	if n < 0 || n > len(buf) {
		return 0, newError(InvariantViolation, "read of %d bytes requested but buf only holds %d", n, len(buf))
	}

	sb, err := readSuperblock(fs.device)
	if err != nil {
		return 0, err
	}
	slot := sb.openTable[fd]
	if !slot.occupied {
		return 0, newError(BadFd, "fd %d is not open", fd)
	}
	if Mode(slot.mode) != ModeRead {
		return 0, newError(WrongMode, "fd %d is not open in read mode", fd)
	}

	d := int64(slot.dirEntryIndex)
	de, err := readDirectoryEntry(fs.device, d)
	if err != nil {
		return 0, err
	}
	rec, err := readFCB(fs.device, int64(de.fcbIndex))
	if err != nil {
		return 0, err
	}
	if rec.indexBlockIndex < 0 {
		return 0, newError(InvariantViolation, "FCB %d for %q has no index block", de.fcbIndex, de.name)
	}
	pointers, err := readIndexBlock(fs.device, int64(rec.indexBlockIndex))
	if err != nil {
		return 0, err
	}

	var dataBlock []byte
	loadedSlot := int64(-1)
	for read < n {
		if int64(rec.lastReadOffset) >= int64(de.fileSize) {
			if writeErr := writeFCB(fs.device, int64(de.fcbIndex), rec); writeErr != nil {
				return read, writeErr
			}
			return read, newError(EndOfFile, "read past end of file %q at offset %d", de.name, rec.lastReadOffset)
		}
		blockSlot := int64(rec.lastReadOffset) / BlockSize
		inBlockOffset := int64(rec.lastReadOffset) % BlockSize
		if blockSlot != loadedSlot {
			blockBuf := make([]byte, BlockSize)
			if err := fs.device.ReadBlock(int64(pointers[blockSlot]), blockBuf); err != nil {
				return read, wrapError(IoError, err, "reading data block %d for read", pointers[blockSlot])
			}
			dataBlock = blockBuf
			loadedSlot = blockSlot
		}
		buf[read] = dataBlock[inBlockOffset]
		read++
		rec.lastReadOffset++
	}
	if err := writeFCB(fs.device, int64(de.fcbIndex), rec); err != nil {
		return read, err
	}
	return read, nil
}

// Delete releases every data block and the index block owned by name's FCB,
// then frees the FCB and directory entry (spec §4.6 Delete).
func (fs *FileSystem) Delete(name string) (err error) {
	log := fs.log.WithField("op", "delete").WithField("name", name)
	defer logResult(log, &err)

	d, de, err := findDirectoryEntryByName(fs.device, name)
	if err != nil {
		return err
	}
	rec, err := readFCB(fs.device, int64(de.fcbIndex))
	if err != nil {
		return err
	}

	if rec.indexBlockIndex >= 0 {
		pointers, err := readIndexBlock(fs.device, int64(rec.indexBlockIndex))
		if err != nil {
			return err
		}
		for i := uint32(0); i < rec.usedBlockCount; i++ {
			if err := releaseBlock(fs.device, int64(pointers[i])); err != nil {
				return err
			}
			pointers[i] = 0
		}
		if err := writeIndexBlock(fs.device, int64(rec.indexBlockIndex), pointers); err != nil {
			return err
		}
		if err := releaseBlock(fs.device, int64(rec.indexBlockIndex)); err != nil {
			return err
		}
	}

	if err := clearFCB(fs.device, int64(de.fcbIndex)); err != nil {
		return err
	}
	if err := clearDirectoryEntry(fs.device, d); err != nil {
		return err
	}

	sb, err := readSuperblock(fs.device)
	if err != nil {
		return err
	}
	sb.currentFileCount--
	return writeSuperblock(fs.device, sb)
}

// logResult emits a debug line on success or a warn line on failure,
// uniformly across every File API operation (spec §7, A1).
func logResult(log *logrus.Entry, err *error) {
	if *err != nil {
		log.WithError(*err).Warn("operation failed")
		return
	}
	log.Debug("operation succeeded")
}
