package disk

import (
	"fmt"

	"github.com/pkg/xattr"
)

// formatTagAttr is the extended attribute name used to tag a freshly
// formatted virtual disk with its format parameters, so tooling can
// introspect a vdisk file without mounting it.
const formatTagAttr = "user.sfs.format"

// WriteFormatTag best-effort tags path with a small string recording its
// format parameters. Extended attributes are not supported by every
// filesystem or OS (notably most non-Linux/macOS setups, and filesystems
// mounted without xattr support); callers should treat failure here as
// non-fatal, which is why this never fails format() itself.
func WriteFormatTag(path string, tag string) error {
	if err := xattr.Set(path, formatTagAttr, []byte(tag)); err != nil {
		return fmt.Errorf("disk: could not write format tag on %s: %v", path, err)
	}
	return nil
}

// ReadFormatTag reads back the tag written by WriteFormatTag, without
// mounting the virtual disk.
func ReadFormatTag(path string) (string, error) {
	b, err := xattr.Get(path, formatTagAttr)
	if err != nil {
		return "", fmt.Errorf("disk: could not read format tag on %s: %v", path, err)
	}
	return string(b), nil
}
