//go:build !linux

package disk

import "os"

// preadFull is the portable fallback for platforms without direct pread(2)
// access through golang.org/x/sys/unix; os.File.ReadAt is itself a single
// positioned read syscall on these platforms with no intervening buffering.
func preadFull(f *os.File, buf []byte, off int64) (int, error) {
	return f.ReadAt(buf, off)
}

// pwriteFull is the portable fallback for pwriteFull.
func pwriteFull(f *os.File, buf []byte, off int64) (int, error) {
	return f.WriteAt(buf, off)
}
