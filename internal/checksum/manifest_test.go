package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func readManifest(t *testing.T, dir string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	return string(content)
}

func TestParseLine(t *testing.T) {
	digest := strings.Repeat("a", 64)

	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{"valid", digest + "  db.key", true},
		{"nested path", digest + "  ssh/id_ed25519.enc", true},
		{"single space", digest + " db.key", false},
		{"no separator", digest + "db.key", false},
		{"uppercase hex", strings.Repeat("A", 64) + "  db.key", false},
		{"short digest", strings.Repeat("a", 63) + "  db.key", false},
		{"missing path", digest + "  ", false},
		{"absolute path", digest + "  /etc/passwd", false},
		{"parent path", digest + "  ../db.key", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.line, entry.String())
			}
		})
	}
}

func TestDigestBytesMatchesDigest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "db.key"), "k1")

	got, err := Digest(filepath.Join(dir, "db.key"))
	require.NoError(t, err)
	assert.Equal(t, DigestBytes([]byte("k1")), got)
	assert.Len(t, got, 64)
}

func TestGenerateWritesOneLinePerFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")
	writeFile(t, filepath.Join(dir, "sub", "b"), "B")

	require.NoError(t, Generate(dir, []string{"a", "sub/b"}))

	want := DigestBytes([]byte("A")) + "  a\n" + DigestBytes([]byte("B")) + "  sub/b\n"
	assert.Equal(t, want, readManifest(t, dir))
	require.NoError(t, VerifyAll(dir))
}

func TestGenerateReplacesExistingEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")
	writeFile(t, filepath.Join(dir, "b"), "B")
	require.NoError(t, Generate(dir, []string{"a", "b"}))

	writeFile(t, filepath.Join(dir, "a"), "A2")
	require.NoError(t, Append(dir, "a"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Path)
	assert.Equal(t, "a", entries[1].Path)
	assert.Equal(t, DigestBytes([]byte("A2")), entries[1].Digest)
	require.NoError(t, VerifyAll(dir))
}

func TestGenerateSkipsManifestItself(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")

	require.NoError(t, Generate(dir, []string{"a", ManifestName}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Path)
}

func TestGenerateUnreadableFile(t *testing.T) {
	dir := t.TempDir()

	err := Generate(dir, []string{"missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrUnreadableFile)
	assert.ErrorIs(t, err, kerrors.ErrManifest)

	_, statErr := os.Stat(filepath.Join(dir, ManifestName))
	assert.True(t, os.IsNotExist(statErr), "manifest should not be written on failure")
}

func TestAppendRefusesMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")
	writeFile(t, filepath.Join(dir, ManifestName), "garbage\n")

	err := Append(dir, "a")
	assert.ErrorIs(t, err, kerrors.ErrMalformedManifest)
}

func TestVerifyAllMissingManifest(t *testing.T) {
	err := VerifyAll(t.TempDir())
	assert.ErrorIs(t, err, kerrors.ErrMissingManifest)
}

func TestVerifyAllMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "A")
	require.NoError(t, Append(dir, "a"))

	writeFile(t, filepath.Join(dir, "a"), "tampered")

	err := VerifyAll(dir)
	require.ErrorIs(t, err, kerrors.ErrChecksumMismatch)

	var merr *kerrors.ManifestError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, filepath.Join(dir, "a"), merr.File)
	assert.Equal(t, filepath.Join(dir, ManifestName), merr.Manifest)
}

func TestVerifyAllMalformedBeforeReadingFiles(t *testing.T) {
	dir := t.TempDir()
	// The first line names a file that does not exist; the malformed second
	// line must be reported instead of the unreadable file.
	content := strings.Repeat("0", 64) + "  missing\n" + strings.Repeat("0", 64) + " single-space\n"
	writeFile(t, filepath.Join(dir, ManifestName), content)

	err := VerifyAll(dir)
	require.ErrorIs(t, err, kerrors.ErrMalformedManifest)
	assert.Contains(t, err.Error(), filepath.Join(dir, ManifestName))
}

func TestVerifyAllUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), strings.Repeat("0", 64)+"  missing\n")

	err := VerifyAll(dir)
	assert.ErrorIs(t, err, kerrors.ErrUnreadableFile)
}

func TestVerifyOne(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "db.key"), "k1")

	created, err := EnsureSidecar(dir, "db.key")
	require.NoError(t, err)
	assert.True(t, created)

	sidecar, err := os.ReadFile(filepath.Join(dir, "db.key.sha256"))
	require.NoError(t, err)
	assert.Equal(t, DigestBytes([]byte("k1"))+"  db.key\n", string(sidecar))

	require.NoError(t, VerifyOne(dir, "db.key"))

	created, err = EnsureSidecar(dir, "db.key")
	require.NoError(t, err)
	assert.False(t, created, "existing sidecar must not be rewritten")
}

func TestVerifyOneTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "db.key"), "k1")
	writeFile(t, filepath.Join(dir, "db.key.sha256"), "\n  "+DigestBytes([]byte("k1"))+"  db.key  \n\n")

	assert.NoError(t, VerifyOne(dir, "db.key"))
}

func TestVerifyOneFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "db.key"), "k1")

	assert.ErrorIs(t, VerifyOne(dir, "db.key"), kerrors.ErrMissingManifest)

	writeFile(t, filepath.Join(dir, "db.key.sha256"), "not a checksum")
	assert.ErrorIs(t, VerifyOne(dir, "db.key"), kerrors.ErrMalformedManifest)

	writeFile(t, filepath.Join(dir, "db.key.sha256"), DigestBytes([]byte("k2"))+"  db.key\n")
	err := VerifyOne(dir, "db.key")
	require.ErrorIs(t, err, kerrors.ErrChecksumMismatch)
	assert.Contains(t, err.Error(), "db.key.sha256")
}

func TestAppendThenVerifyOneWithSameContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "db.key"), "k1")
	_, err := EnsureSidecar(dir, "db.key")
	require.NoError(t, err)

	require.NoError(t, Append(dir, "db.key"))
	require.NoError(t, Append(dir, "db.key.sha256"))

	// Rewriting bitwise-identical content keeps both checks green.
	writeFile(t, filepath.Join(dir, "db.key"), "k1")
	assert.NoError(t, VerifyOne(dir, "db.key"))
	assert.NoError(t, VerifyAll(dir))
}
