// Package audit records export and import runs in a per-user audit trail.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	$XDG_STATE_HOME/secrets-manager/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Run ID, shared by every entry written by one process
//   - Operation name and profile
//   - Source and target roots, number of files handled
//   - Outcome, with the error message on failure
//
// # Usage
//
//	entry := audit.NewEntry("export", profile)
//	entry.Source, entry.Target = source, target
//	entry.Finish(len(files), err)
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// Use ReadEntries() to parse the audit log. Malformed entries are silently
// skipped to handle partial writes.
package audit
