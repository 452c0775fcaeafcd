// Package checksum maintains per-directory integrity manifests.
//
// A manifest is the file sha256sums.txt inside a directory. Each line is
//
//	<64 lowercase hex chars><two spaces><relative path>
//
// and describes one file of that directory tree. Lines follow insertion
// order; re-recording a path replaces its previous line. The manifest never
// describes itself.
//
// Single files can also carry a sidecar, <name>.sha256, holding one line in
// the same grammar. VerifyOne checks a file against its sidecar without
// touching the directory manifest; export and import use it right after a
// file is produced, before trusting it.
//
// None of the functions lock: callers must serialize access to a directory.
package checksum
