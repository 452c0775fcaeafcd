package workflows

import (
	"fmt"
	"io/fs"
	"os"
)

// fileMetadata is the POSIX ownership and mode carried from a source file
// to its ciphertext, and from the ciphertext to the imported file.
type fileMetadata struct {
	mode     fs.FileMode
	uid, gid int
	hasOwner bool
}

func metadataOf(path string) (fileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileMetadata{}, err
	}
	meta := fileMetadata{mode: info.Mode().Perm()}
	meta.uid, meta.gid, meta.hasOwner = ownerOf(info)
	return meta, nil
}

// apply sets the mode and, where it differs, the owner of path.
func (m fileMetadata) apply(path string) error {
	if m.hasOwner {
		current, err := os.Stat(path)
		if err != nil {
			return err
		}
		uid, gid, ok := ownerOf(current)
		if ok && (uid != m.uid || gid != m.gid) {
			if err := os.Chown(path, m.uid, m.gid); err != nil {
				return fmt.Errorf("restoring owner %d:%d of '%s': %w", m.uid, m.gid, path, err)
			}
		}
	}

	if err := os.Chmod(path, m.mode); err != nil {
		return fmt.Errorf("restoring mode %o of '%s': %w", m.mode, path, err)
	}
	return nil
}
