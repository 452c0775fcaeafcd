package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
)

const (
	// ManifestName is the file name of a directory's manifest.
	ManifestName = "sha256sums.txt"

	// SidecarSuffix is appended to a file name to get its sidecar.
	SidecarSuffix = ".sha256"
)

var lineRegexp = regexp.MustCompile(`^([0-9a-f]{64})  (.+)$`)

// Entry is one manifest line.
type Entry struct {
	Digest string
	Path   string
}

// String formats the entry in the two-field manifest grammar, without newline.
func (e Entry) String() string {
	return e.Digest + "  " + e.Path
}

// ParseLine parses a single manifest line. The path must be relative and
// must not step outside the manifest's directory.
func ParseLine(line string) (Entry, bool) {
	m := lineRegexp.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	if !isLocal(m[2]) {
		return Entry{}, false
	}
	return Entry{Digest: m[1], Path: m[2]}, true
}

func isLocal(p string) bool {
	if strings.HasPrefix(p, "/") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// SidecarPath returns the sidecar location for a file path.
func SidecarPath(path string) string {
	return path + SidecarSuffix
}

// ManifestPath returns the manifest location for a directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// Digest returns the lowercase hex SHA-256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes returns the lowercase hex SHA-256 of content.
func DigestBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func fileDigest(dir, rel string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	digest, err := Digest(path)
	if err != nil {
		return "", &kerrors.ManifestError{Kind: kerrors.UnreadableFile, File: path, Err: err}
	}
	return digest, nil
}

// Read returns the entries of dir's manifest in file order.
func Read(dir string) ([]Entry, error) {
	sums := ManifestPath(dir)

	content, err := os.ReadFile(sums)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &kerrors.ManifestError{Kind: kerrors.MissingManifest, Manifest: sums}
	}
	if err != nil {
		return nil, &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}

	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry, ok := ParseLine(line)
		if !ok {
			return nil, &kerrors.ManifestError{Kind: kerrors.MalformedManifest, Manifest: sums}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func write(dir string, entries []Entry) error {
	sums := ManifestPath(dir)

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(dir, "."+ManifestName+".*")
	if err != nil {
		return &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}
	// #nosec G302 -- checksums are not secret.
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}
	if err := os.Rename(tmpName, sums); err != nil {
		return &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sums, Err: err}
	}
	return nil
}

// Generate computes digests for files (slash-separated paths relative to dir)
// and rewrites dir's manifest. Entries for those paths are replaced and moved
// to the end; entries for all other paths are kept in place. The manifest
// never describes itself.
//
// Generate is not safe for concurrent use on the same directory.
func Generate(dir string, files []string) error {
	existing, err := Read(dir)
	if err != nil && !errors.Is(err, kerrors.ErrMissingManifest) {
		return err
	}

	fresh := make([]Entry, 0, len(files))
	index := make(map[string]int, len(files))
	for _, rel := range files {
		rel = filepath.ToSlash(rel)
		if rel == ManifestName {
			continue
		}
		if !isLocal(rel) {
			return fmt.Errorf("path '%s' is outside of '%s'", rel, dir)
		}

		digest, err := fileDigest(dir, rel)
		if err != nil {
			return err
		}

		if i, ok := index[rel]; ok {
			fresh[i].Digest = digest
			continue
		}
		index[rel] = len(fresh)
		fresh = append(fresh, Entry{Digest: digest, Path: rel})
	}

	entries := make([]Entry, 0, len(existing)+len(fresh))
	for _, e := range existing {
		if _, replaced := index[e.Path]; !replaced {
			entries = append(entries, e)
		}
	}
	entries = append(entries, fresh...)

	return write(dir, entries)
}

// Append records a single file in dir's manifest, keeping all other entries.
func Append(dir, rel string) error {
	return Generate(dir, []string{rel})
}

// VerifyAll checks every file listed in dir's manifest. The whole manifest is
// parsed before any file is read; verification stops at the first mismatch.
func VerifyAll(dir string) error {
	entries, err := Read(dir)
	if err != nil {
		return err
	}

	sums := ManifestPath(dir)
	for _, e := range entries {
		digest, err := fileDigest(dir, e.Path)
		if err != nil {
			return err
		}
		if digest != e.Digest {
			return &kerrors.ManifestError{
				Kind:     kerrors.ChecksumMismatch,
				File:     filepath.Join(dir, filepath.FromSlash(e.Path)),
				Manifest: sums,
			}
		}
	}
	return nil
}

// ReadSidecar returns the digest recorded in the sidecar of dir/rel.
func ReadSidecar(dir, rel string) (string, error) {
	sidecar := SidecarPath(filepath.Join(dir, filepath.FromSlash(rel)))

	content, err := os.ReadFile(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &kerrors.ManifestError{Kind: kerrors.MissingManifest, Manifest: sidecar}
	}
	if err != nil {
		return "", &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sidecar, Err: err}
	}

	m := lineRegexp.FindStringSubmatch(strings.TrimSpace(string(content)))
	if m == nil {
		return "", &kerrors.ManifestError{Kind: kerrors.MalformedManifest, Manifest: sidecar}
	}
	return m[1], nil
}

// VerifyOne checks dir/rel against its own sidecar, independently of the
// directory manifest.
func VerifyOne(dir, rel string) error {
	want, err := ReadSidecar(dir, rel)
	if err != nil {
		return err
	}

	got, err := fileDigest(dir, rel)
	if err != nil {
		return err
	}

	if got != want {
		file := filepath.Join(dir, filepath.FromSlash(rel))
		return &kerrors.ManifestError{Kind: kerrors.ChecksumMismatch, File: file, Manifest: SidecarPath(file)}
	}
	return nil
}

// EnsureSidecar writes the sidecar of dir/rel if it does not exist yet and
// reports whether it did. Existing sidecars are left untouched.
func EnsureSidecar(dir, rel string) (bool, error) {
	file := filepath.Join(dir, filepath.FromSlash(rel))
	sidecar := SidecarPath(file)

	if _, err := os.Lstat(sidecar); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sidecar, Err: err}
	}

	digest, err := fileDigest(dir, rel)
	if err != nil {
		return false, err
	}

	line := Entry{Digest: digest, Path: filepath.Base(file)}.String() + "\n"
	// #nosec G306 -- checksums are not secret.
	if err := os.WriteFile(sidecar, []byte(line), 0644); err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: sidecar, Err: err}
	}
	return true, nil
}
