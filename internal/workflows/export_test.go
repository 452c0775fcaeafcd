package workflows

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/configs"
	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	logger "github.com/PolarWolf314/secrets-manager/internal/logging"
	"github.com/PolarWolf314/secrets-manager/internal/secrets"
)

func TestExport_WritesCiphertextsSidecarsAndManifest(t *testing.T) {
	tree := newTestTree(t, testConfig)

	result, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	expected := []string{"db.key", "ssh/id_ed25519", "ca.pem"}
	if !reflect.DeepEqual(result.Exported, expected) {
		t.Errorf("Expected exported %v, got %v", expected, result.Exported)
	}
	if !reflect.DeepEqual(result.Artifacts, []string{"secrets-manager.toml"}) {
		t.Errorf("Expected config artifact, got %v", result.Artifacts)
	}

	for _, rel := range expected {
		enc := filepath.Join(tree.target, filepath.FromSlash(rel)+secrets.EncryptedSuffix)
		if _, err := os.Stat(enc); err != nil {
			t.Errorf("Expected ciphertext for %s: %v", rel, err)
		}
		sidecar := checksum.SidecarPath(filepath.Join(tree.target, filepath.FromSlash(rel)))
		want, _ := os.ReadFile(checksum.SidecarPath(filepath.Join(tree.source, filepath.FromSlash(rel))))
		assertFileContent(t, sidecar, string(want))
	}

	// Bob's secret is exported by bob's own run.
	if _, err := os.Stat(filepath.Join(tree.target, "api.token.enc")); !os.IsNotExist(err) {
		t.Errorf("Expected api.token not to be exported for alice")
	}

	assertFileContent(t, filepath.Join(tree.target, "secrets-manager.toml"), testConfig)

	entries, err := checksum.Read(tree.target)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	if len(entries) != 7 {
		t.Errorf("Expected 7 manifest entries, got %d: %v", len(entries), entries)
	}
	if err := checksum.VerifyAll(tree.target); err != nil {
		t.Errorf("Expected export to verify: %v", err)
	}
}

func TestExport_CopiesSourceMode(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tree.target, "db.key.enc"))
	if err != nil {
		t.Fatalf("Failed to stat ciphertext: %v", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("Expected ciphertext mode 0640, got %o", info.Mode().Perm())
	}
}

func TestExport_ReexportRefreshesSourceMode(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("First export failed: %v", err)
	}

	if err := os.Chmod(filepath.Join(tree.source, "db.key"), 0600); err != nil {
		t.Fatalf("Failed to chmod source: %v", err)
	}

	result, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if err != nil {
		t.Fatalf("Second export failed: %v", err)
	}
	if len(result.Exported) != 0 {
		t.Errorf("Expected no ciphertext to be rewritten, got %v", result.Exported)
	}

	info, err := os.Stat(filepath.Join(tree.target, "db.key.enc"))
	if err != nil {
		t.Fatalf("Failed to stat ciphertext: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected ciphertext mode 0600 after re-export, got %o", info.Mode().Perm())
	}

	into := t.TempDir()
	if _, err := Import(context.Background(), tree.importOptions(t, "alice", "pw", into)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	info, err = os.Stat(filepath.Join(into, "db.key"))
	if err != nil {
		t.Fatalf("Failed to stat imported file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected imported mode 0600, got %o", info.Mode().Perm())
	}
}

func TestExport_LogsReplacedArtifact(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("First export failed: %v", err)
	}

	edited := testConfig + "# edited\n"
	cfg, err := configs.Parse([]byte(edited), false)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	var out bytes.Buffer
	opts := tree.exportOptions(t, "alice", "pw")
	opts.Config = cfg
	opts.Logger = logger.Logger{Debug: true, Out: &out}
	if _, err := Export(context.Background(), opts); err != nil {
		t.Fatalf("Second export failed: %v", err)
	}

	if !strings.Contains(out.String(), "content differs from the previous export") {
		t.Errorf("Expected replaced config to be logged, got: %s", out.String())
	}
	assertFileContent(t, filepath.Join(tree.target, "secrets-manager.toml"), edited)
	if err := checksum.VerifyAll(tree.target); err != nil {
		t.Errorf("Expected export to verify: %v", err)
	}
}

func TestExport_IsIdempotent(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("First export failed: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(tree.target, "db.key.enc"))
	if err != nil {
		t.Fatalf("Failed to read ciphertext: %v", err)
	}

	result, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if err != nil {
		t.Fatalf("Second export failed: %v", err)
	}
	if len(result.Exported) != 0 || len(result.Unchanged) != 3 {
		t.Errorf("Expected all secrets unchanged, got exported=%v unchanged=%v", result.Exported, result.Unchanged)
	}

	assertFileContent(t, filepath.Join(tree.target, "db.key.enc"), string(before))
}

func TestExport_PassphraseChanged(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("First export failed: %v", err)
	}

	_, err := Export(context.Background(), tree.exportOptions(t, "alice", "other"))
	if !errors.Is(err, kerrors.ErrPassphraseChanged) {
		t.Fatalf("Expected ErrPassphraseChanged, got %v", err)
	}
}

func TestExport_RefusesChangedSource(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if _, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw")); err != nil {
		t.Fatalf("First export failed: %v", err)
	}

	os.Remove(checksum.SidecarPath(filepath.Join(tree.source, "db.key")))
	writeSecret(t, tree.source, "db.key", "k2")

	_, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if !errors.Is(err, kerrors.ErrContentMismatch) {
		t.Fatalf("Expected ErrContentMismatch, got %v", err)
	}
}

func TestExport_FailsOnCorruptedSource(t *testing.T) {
	tree := newTestTree(t, testConfig)

	if err := os.WriteFile(filepath.Join(tree.source, "db.key"), []byte("tampered"), 0640); err != nil {
		t.Fatalf("Failed to tamper source: %v", err)
	}

	result, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if !errors.Is(err, kerrors.ErrChecksumMismatch) {
		t.Fatalf("Expected ErrChecksumMismatch, got %v", err)
	}
	if len(result.Exported) != 0 {
		t.Errorf("Expected nothing exported, got %v", result.Exported)
	}
	if _, err := os.Stat(filepath.Join(tree.target, "db.key.enc")); !os.IsNotExist(err) {
		t.Errorf("Expected no ciphertext for a corrupted source")
	}
}

func TestExport_MissingSidecar(t *testing.T) {
	tree := newTestTree(t, testConfig)
	os.Remove(checksum.SidecarPath(filepath.Join(tree.source, "db.key")))

	_, err := Export(context.Background(), tree.exportOptions(t, "alice", "pw"))
	if !errors.Is(err, kerrors.ErrMissingManifest) {
		t.Fatalf("Expected ErrMissingManifest, got %v", err)
	}

	opts := tree.exportOptions(t, "alice", "pw")
	opts.CreateChecksums = true
	result, err := Export(context.Background(), opts)
	if err != nil {
		t.Fatalf("Export with CreateChecksums failed: %v", err)
	}
	if len(result.SidecarsCreated) != 1 || result.SidecarsCreated[0] != "db.key" {
		t.Errorf("Expected db.key sidecar to be created, got %v", result.SidecarsCreated)
	}
}

func TestExport_RequiresDirectories(t *testing.T) {
	tree := newTestTree(t, testConfig)

	opts := tree.exportOptions(t, "alice", "pw")
	opts.Target = filepath.Join(tree.target, "absent")
	if _, err := Export(context.Background(), opts); !errors.Is(err, kerrors.ErrPath) {
		t.Errorf("Expected ErrPath for a missing target, got %v", err)
	}

	opts = tree.exportOptions(t, "alice", "pw")
	opts.Source = filepath.Join(tree.source, "db.key")
	if _, err := Export(context.Background(), opts); !errors.Is(err, kerrors.ErrPath) {
		t.Errorf("Expected ErrPath for a file source, got %v", err)
	}
}

func TestExport_CopiesExecutable(t *testing.T) {
	tree := newTestTree(t, testConfig)

	exe := filepath.Join(t.TempDir(), "secrets-manager")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0700); err != nil {
		t.Fatalf("Failed to write executable: %v", err)
	}

	opts := tree.exportOptions(t, "shared", "pw")
	opts.Executable = exe
	result, err := Export(context.Background(), opts)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if !reflect.DeepEqual(result.Exported, []string{"ca.pem"}) {
		t.Errorf("Expected only the shared secret, got %v", result.Exported)
	}
	if !reflect.DeepEqual(result.Artifacts, []string{"secrets-manager", "secrets-manager.toml"}) {
		t.Errorf("Unexpected artifacts %v", result.Artifacts)
	}

	info, err := os.Stat(filepath.Join(tree.target, "secrets-manager"))
	if err != nil {
		t.Fatalf("Failed to stat exported executable: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("Expected executable mode 0755, got %o", info.Mode().Perm())
	}
	if err := checksum.VerifyAll(tree.target); err != nil {
		t.Errorf("Expected export to verify: %v", err)
	}
}
