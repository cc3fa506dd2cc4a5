package sfs

// Block size and fixed region layout (spec §3, §6).
const (
	// BlockSize is the fixed block size in bytes, B in the spec.
	BlockSize int64 = 4096

	// SuperblockIndex is the block holding the superblock.
	SuperblockIndex int64 = 0

	// BitmapStartBlock is the first of the four bitmap blocks.
	BitmapStartBlock int64 = 1
	// BitmapBlockCount is the number of bitmap blocks.
	BitmapBlockCount int64 = 4

	// DirectoryStartBlock is the first of the four root-directory blocks.
	DirectoryStartBlock int64 = 5
	// DirectoryBlockCount is the number of root-directory blocks.
	DirectoryBlockCount int64 = 4

	// FCBStartBlock is the first of the four FCB table blocks.
	FCBStartBlock int64 = 9
	// FCBBlockCount is the number of FCB table blocks.
	FCBBlockCount int64 = 4

	// DataStartBlock is the first block of the data region.
	DataStartBlock int64 = 13

	// EntriesPerBlock is the fanout of directory entries and FCBs per block.
	EntriesPerBlock int64 = 32

	// MaxFiles is the total number of directory entries / FCBs.
	MaxFiles int64 = DirectoryBlockCount * EntriesPerBlock

	// MaxOpenFiles is the number of slots in the open table.
	MaxOpenFiles int64 = 16

	// MaxFilenameLen is the maximum filename length, not counting the NUL terminator.
	MaxFilenameLen int = 109

	// dirEntrySize and fcbSize are the fixed on-disk record sizes (spec §3).
	dirEntrySize int64 = 128
	fcbSize      int64 = 128

	// bitsPerBitmapBlock is the number of allocatable bits held by one bitmap block.
	bitsPerBitmapBlock int64 = BlockSize * 8

	// indexBlockPointerSlots is how many 32-bit block pointers an index
	// block can hold once its final 4 bytes are reserved for a checksum (A2).
	indexBlockPointerSlots int64 = BlockSize/4 - 1

	// minValidBlockCount is the smallest N for which all fixed metadata fits.
	minValidBlockCount int64 = DataStartBlock
	// maxValidBlockCount is the largest N addressable by the 4-block bitmap.
	maxValidBlockCount int64 = BitmapBlockCount * bitsPerBitmapBlock
)
