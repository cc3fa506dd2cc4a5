package disk

import (
	"fmt"
	"io"
	"os"

	lz4 "github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ExportSnapshotLZ4 copies the entire backing file at srcPath into an LZ4
// compressed snapshot at dstPath. LZ4 favors fast, low-latency snapshots
// over an online volume at the cost of compression ratio, so this is the
// preferred choice for frequent backups.
func ExportSnapshotLZ4(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("disk: could not open %s for snapshot: %v", srcPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("disk: could not create snapshot %s: %v", dstPath, err)
	}
	defer dst.Close()

	w := lz4.NewWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("disk: lz4 snapshot of %s failed: %v", srcPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("disk: lz4 snapshot of %s failed to finalize: %v", srcPath, err)
	}
	return nil
}

// ImportSnapshotLZ4 restores a backing file at dstPath from an LZ4
// compressed snapshot at srcPath, overwriting dstPath if it exists.
func ImportSnapshotLZ4(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("disk: could not open snapshot %s: %v", srcPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("disk: could not create %s from snapshot: %v", dstPath, err)
	}
	defer dst.Close()

	r := lz4.NewReader(src)
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("disk: restoring %s from lz4 snapshot failed: %v", dstPath, err)
	}
	return nil
}

// ExportSnapshotXZ copies the entire backing file at srcPath into an XZ
// compressed snapshot at dstPath. XZ trades slower compression for a much
// higher ratio, intended for cold archival snapshots rather than frequent
// backups.
func ExportSnapshotXZ(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("disk: could not open %s for snapshot: %v", srcPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("disk: could not create snapshot %s: %v", dstPath, err)
	}
	defer dst.Close()

	w, err := xz.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("disk: could not start xz snapshot of %s: %v", srcPath, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("disk: xz snapshot of %s failed: %v", srcPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("disk: xz snapshot of %s failed to finalize: %v", srcPath, err)
	}
	return nil
}

// ImportSnapshotXZ restores a backing file at dstPath from an XZ compressed
// snapshot at srcPath, overwriting dstPath if it exists.
func ImportSnapshotXZ(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("disk: could not open snapshot %s: %v", srcPath, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("disk: could not create %s from snapshot: %v", dstPath, err)
	}
	defer dst.Close()

	r, err := xz.NewReader(src)
	if err != nil {
		return fmt.Errorf("disk: could not start reading xz snapshot %s: %v", srcPath, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("disk: restoring %s from xz snapshot failed: %v", dstPath, err)
	}
	return nil
}
