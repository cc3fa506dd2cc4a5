// Package disk provides a fixed-size block-addressed view over a regular
// file, plus a handful of ambient helpers (timestamps, tagging, compressed
// snapshots) for working with the backing file outside of any mounted
// filesystem's own metadata.
package disk

import (
	"fmt"
	"os"
)

// BlockDevice exposes positioned, uncached, fixed-size block I/O over a
// single backing file. It performs no buffering of its own: every
// ReadBlock/WriteBlock call is one positioned read or write syscall.
type BlockDevice struct {
	file        *os.File
	blockSize   int64
	totalBlocks int64
}

// Create produces a zero-filled regular file of the given size at path and
// returns a BlockDevice over it with the given block size. size must be a
// multiple of blockSize.
func Create(path string, size int64, blockSize int64) (*BlockDevice, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("disk: block size must be positive, got %d", blockSize)
	}
	if size <= 0 || size%blockSize != 0 {
		return nil, fmt.Errorf("disk: size %d is not a positive multiple of block size %d", size, blockSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: could not create backing file %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: could not size backing file %s to %d bytes: %v", path, size, err)
	}
	return &BlockDevice{file: f, blockSize: blockSize, totalBlocks: size / blockSize}, nil
}

// Open opens an existing backing file read-write and returns a BlockDevice
// over it. The file's length must be a positive multiple of blockSize.
func Open(path string, blockSize int64) (*BlockDevice, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("disk: block size must be positive, got %d", blockSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: could not open backing file %s: %v", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: could not stat backing file %s: %v", path, err)
	}
	size := st.Size()
	if size <= 0 || size%blockSize != 0 {
		f.Close()
		return nil, fmt.Errorf("disk: backing file %s has size %d, not a positive multiple of block size %d", path, size, blockSize)
	}
	return &BlockDevice{file: f, blockSize: blockSize, totalBlocks: size / blockSize}, nil
}

// BlockSize returns the fixed block size of this device, in bytes.
func (bd *BlockDevice) BlockSize() int64 {
	return bd.blockSize
}

// TotalBlocks returns the number of fixed-size blocks in the backing file.
func (bd *BlockDevice) TotalBlocks() int64 {
	return bd.totalBlocks
}

// Path returns the backing file's path, for diagnostics.
func (bd *BlockDevice) Path() string {
	return bd.file.Name()
}

// ReadBlock reads exactly BlockSize() bytes from block index into buf.
// buf must be at least BlockSize() bytes long.
func (bd *BlockDevice) ReadBlock(index int64, buf []byte) error {
	if index < 0 || index >= bd.totalBlocks {
		return fmt.Errorf("disk: block index %d out of range [0,%d)", index, bd.totalBlocks)
	}
	if int64(len(buf)) < bd.blockSize {
		return fmt.Errorf("disk: read buffer of %d bytes is smaller than block size %d", len(buf), bd.blockSize)
	}
	n, err := preadFull(bd.file, buf[:bd.blockSize], index*bd.blockSize)
	if err != nil {
		return fmt.Errorf("disk: read of block %d failed: %v", index, err)
	}
	if int64(n) != bd.blockSize {
		return fmt.Errorf("disk: read %d bytes for block %d instead of expected %d", n, index, bd.blockSize)
	}
	return nil
}

// WriteBlock writes exactly BlockSize() bytes from buf to block index.
// buf must be at least BlockSize() bytes long.
func (bd *BlockDevice) WriteBlock(index int64, buf []byte) error {
	if index < 0 || index >= bd.totalBlocks {
		return fmt.Errorf("disk: block index %d out of range [0,%d)", index, bd.totalBlocks)
	}
	if int64(len(buf)) < bd.blockSize {
		return fmt.Errorf("disk: write buffer of %d bytes is smaller than block size %d", len(buf), bd.blockSize)
	}
	n, err := pwriteFull(bd.file, buf[:bd.blockSize], index*bd.blockSize)
	if err != nil {
		return fmt.Errorf("disk: write of block %d failed: %v", index, err)
	}
	if int64(n) != bd.blockSize {
		return fmt.Errorf("disk: wrote %d bytes for block %d instead of expected %d", n, index, bd.blockSize)
	}
	return nil
}

// Close flushes and releases the backing file.
func (bd *BlockDevice) Close() error {
	if err := bd.file.Sync(); err != nil {
		return fmt.Errorf("disk: could not flush backing file %s: %v", bd.Path(), err)
	}
	if err := bd.file.Close(); err != nil {
		return fmt.Errorf("disk: could not close backing file %s: %v", bd.Path(), err)
	}
	return nil
}
