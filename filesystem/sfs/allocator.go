package sfs

import "github.com/simplefs/go-sfs/disk"

// allocateBlock performs a deterministic first-fit scan of the four bitmap
// blocks in index order and returns the lowest-indexed clear bit below the
// disk's total block count, setting it and persisting the owning bitmap
// block before returning (spec §4.2).
func allocateBlock(bd *disk.BlockDevice, totalBlocks int64) (int64, error) {
	for blockNum := int64(0); blockNum < BitmapBlockCount; blockNum++ {
		bb, err := readBitmapBlock(bd, blockNum)
		if err != nil {
			return 0, err
		}
		from := uint(0)
		for {
			idx, ok := bb.set.NextClear(from)
			if !ok {
				break
			}
			global := blockNum*bitsPerBitmapBlock + int64(idx)
			if global >= totalBlocks {
				break
			}
			bb.set.Set(idx)
			if err := writeBitmapBlock(bd, blockNum, bb); err != nil {
				return 0, err
			}
			return global, nil
		}
	}
	return 0, newError(NoSpace, "no free blocks remain on this device")
}

// releaseBlock clears blockIndex's bit in the bitmap. Idempotent: releasing
// an already-clear bit is not an error.
func releaseBlock(bd *disk.BlockDevice, blockIndex int64) error {
	return updateBitmap(bd, blockIndex, false)
}
