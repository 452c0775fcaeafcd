// Package errors provides typed error values for secrets-manager.
//
// Every failure is terminal for the current export or import run. Errors are
// grouped into categories, each with a sentinel usable with errors.Is():
//
//   - Path errors: a source or target root is missing or not a directory (ErrPath)
//   - Manifest errors: missing, malformed, unreadable or mismatched checksums (ErrManifest)
//   - Config errors: invalid paths, ownership conflicts, bad imports (ErrConfig)
//   - Crypto errors: encryption or decryption failures (ErrCrypto)
//   - Safe-write conflicts (ErrContentMismatch)
//   - Symlink reconciliation conflicts (ErrSymlinkConflict)
//
// The typed errors (ManifestError, ConfigError, ...) carry the offending path
// or profile and are constructed at the point of failure:
//
//	return &errors.ManifestError{Kind: errors.ChecksumMismatch, File: file, Manifest: sums}
//
// Callers check categories or finer sentinels:
//
//	if errors.Is(err, kerrors.ErrMalformedManifest) {
//	    // the manifest itself is damaged
//	}
package errors
