package sfs

// putFixedString copies name, NUL-terminated, into a fixed-width field,
// truncating to fit. Callers that care whether a name was shortened should
// validate its length beforehand (see validateFilename), since this helper
// truncates silently rather than reporting an error.
func putFixedString(dst []byte, name string) {
	for i := range dst {
		dst[i] = 0
	}
	n := len(name)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, name[:n])
}

// getFixedString reads a NUL-terminated string out of a fixed-width field.
func getFixedString(src []byte) string {
	for i, c := range src {
		if c == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}

func validateFilename(name string) error {
	if name == "" {
		return newError(InvariantViolation, "filename must not be empty")
	}
	if len(name) > MaxFilenameLen {
		return newError(InvariantViolation, "filename %q exceeds maximum length %d", name, MaxFilenameLen)
	}
	return nil
}
