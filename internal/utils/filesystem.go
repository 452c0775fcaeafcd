package utils

import (
	"errors"
	"io/fs"
	"os"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
)

// RequireDir returns a PathError unless path exists and is a directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &kerrors.PathError{Path: path, Reason: "does not exist"}
	}
	if err != nil {
		return &kerrors.PathError{Path: path, Reason: "cannot be accessed: " + err.Error()}
	}
	if !info.IsDir() {
		return &kerrors.PathError{Path: path, Reason: "is not a directory"}
	}
	return nil
}
