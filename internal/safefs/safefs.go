// Package safefs implements the only write primitive used when importing:
// a write that never replaces existing content that differs.
package safefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
)

// Result tells whether SafeWrite created the file or found it already in place.
type Result int

const (
	Written Result = iota
	Unchanged
)

// SafeWrite writes content to path if nothing exists there. If a file exists,
// its content is compared byte for byte: identical content succeeds without
// touching the file, different content fails with a ContentMismatchError.
func SafeWrite(path string, content []byte, perm os.FileMode) (Result, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !bytes.Equal(existing, content) {
			return Unchanged, &kerrors.ContentMismatchError{Path: path}
		}
		return Unchanged, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Unchanged, fmt.Errorf("failed to read file at '%s' to check if the existing content matches the content meant to be written to it: %w", path, err)
	}

	// O_EXCL so a file appearing between the read and the write is not clobbered.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return Unchanged, fmt.Errorf("failed to write content to file at '%s': %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return Unchanged, fmt.Errorf("failed to write content to file at '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Unchanged, fmt.Errorf("failed to write content to file at '%s': %w", path, err)
	}
	return Written, nil
}
