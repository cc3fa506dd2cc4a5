//go:build linux

package disk

import (
	"os"

	"golang.org/x/sys/unix"
)

// preadFull issues positioned pread(2) syscalls directly, bypassing the
// os.File buffering path entirely, until buf is full or an error occurs.
// This is what the spec means by "syscall-level I/O, no caching" for the
// block device (§4.1).
func preadFull(f *os.File, buf []byte, off int64) (int, error) {
	total := 0
	fd := int(f.Fd())
	for total < len(buf) {
		n, err := unix.Pread(fd, buf[total:], off+int64(total))
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

// pwriteFull issues positioned pwrite(2) syscalls directly until buf is
// fully written or an error occurs.
func pwriteFull(f *os.File, buf []byte, off int64) (int, error) {
	total := 0
	fd := int(f.Fd())
	for total < len(buf) {
		n, err := unix.Pwrite(fd, buf[total:], off+int64(total))
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}
