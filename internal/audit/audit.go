package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/secrets-manager/internal/configs"
	"github.com/google/uuid"
)

// FileName is the audit log's name inside the state directory.
const FileName = "audit.jsonl"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`     // RFC3339 with microseconds.
	RunID     string `json:"run_id"` // Random per process run.
	Operation string `json:"op"`     // export, import or verify-export.
	Profile   string `json:"profile,omitempty"`

	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	FilesCount int    `json:"files_count"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

var runID = uuid.NewString()

// RunID returns the identifier shared by all entries of this process.
func RunID() string {
	return runID
}

// NewEntry returns an entry for op with the run ID and profile filled in.
func NewEntry(op, profile string) Entry {
	return Entry{RunID: runID, Operation: op, Profile: profile}
}

// Finish records the outcome of the operation on the entry.
func (e *Entry) Finish(filesCount int, err error) {
	e.FilesCount = filesCount
	e.OK = err == nil
	if err != nil {
		e.Error = err.Error()
	}
}

// Log appends an entry to the audit log.
// If logging fails, it does not return an error.
// Operations should not fail just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	// #nosec G304 -- the path comes from the user's own state directory.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
// Returns empty string if no state directory could be resolved.
func LogPath() string {
	stateDir := configs.UserManagerSettings.StateDir
	if stateDir == "" {
		return ""
	}
	return filepath.Join(stateDir, FileName)
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
