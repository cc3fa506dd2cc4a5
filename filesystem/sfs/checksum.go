package sfs

import "hash/crc32"

// crc32cTable is the Castagnoli polynomial table, the same checksum
// algorithm ext4 uses for its own metadata_csum feature.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// checksum returns the CRC32C (Castagnoli) checksum of b, used to detect
// corruption in persisted superblock, directory entry, FCB, and index block
// records (§3 invariant 7).
func checksum(b []byte) uint32 {
	return crc32.Checksum(b, crc32cTable)
}
