package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/secrets-manager/internal/configs"
)

func withStateDir(t *testing.T) string {
	t.Helper()
	stateDir := filepath.Join(t.TempDir(), "state")

	original := configs.UserManagerSettings
	configs.UserManagerSettings = &configs.UserSettings{StateDir: stateDir}
	t.Cleanup(func() {
		configs.UserManagerSettings = original
	})
	return stateDir
}

func TestLog_CreatesFile(t *testing.T) {
	stateDir := withStateDir(t)

	Log(NewEntry("export", "alice"))

	logPath := filepath.Join(stateDir, FileName)
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	withStateDir(t)

	ok := NewEntry("export", "alice")
	ok.Source = "/secrets"
	ok.Target = "/mnt/usb"
	ok.Finish(3, nil)
	Log(ok)

	failed := NewEntry("import", "bob")
	failed.Finish(1, errors.New("checksum mismatch"))
	Log(failed)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Operation != "export" || entries[0].Profile != "alice" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if !entries[0].OK || entries[0].FilesCount != 3 || entries[0].Target != "/mnt/usb" {
		t.Errorf("Unexpected first entry outcome: %+v", entries[0])
	}
	if entries[1].OK || entries[1].Error != "checksum mismatch" {
		t.Errorf("Unexpected second entry outcome: %+v", entries[1])
	}
	if entries[0].RunID == "" || entries[0].RunID != entries[1].RunID {
		t.Errorf("Expected a shared run ID, got %q and %q", entries[0].RunID, entries[1].RunID)
	}
	if entries[0].Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestLog_NoStateDir(t *testing.T) {
	original := configs.UserManagerSettings
	configs.UserManagerSettings = &configs.UserSettings{}
	defer func() { configs.UserManagerSettings = original }()

	Log(NewEntry("export", "alice"))

	if LogPath() != "" {
		t.Errorf("Expected empty log path, got %q", LogPath())
	}
	entries, err := ReadEntries()
	if err != nil || entries != nil {
		t.Errorf("Expected no entries and no error, got %v, %v", entries, err)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"t1","run_id":"r","op":"export","files_count":1,"ok":true}
not json
{"ts":"t2","run_id":"r","op":"import","files_count":0,"ok":false}
`)
	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Operation != "import" {
		t.Errorf("Expected second op 'import', got %q", entries[1].Operation)
	}
}

func TestParseEntries_Empty(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil || entries != nil {
		t.Errorf("Expected nil entries, got %v, %v", entries, err)
	}
}
