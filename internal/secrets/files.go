package secrets

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// EncryptedSuffix is appended to a secret's name for its ciphertext.
const EncryptedSuffix = ".enc"

// EncryptedPath returns the ciphertext location for a secret path.
func EncryptedPath(path string) string {
	return path + EncryptedSuffix
}

// FilterPaths returns the slash-separated relative paths matching pattern,
// which may use ** to cross directories. An empty pattern matches everything.
func FilterPaths(paths []string, pattern string) ([]string, error) {
	if pattern == "" {
		return paths, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}

	var matched []string
	for _, p := range paths {
		// Match only errors on bad patterns, which were rejected above.
		if ok, _ := doublestar.Match(pattern, p); ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
