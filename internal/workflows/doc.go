// Package workflows provides high-level orchestration for secrets-manager
// commands.
//
// Workflows coordinate the checksum, safefs, secrets and configs packages to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// passphrase prompting, spinners and output formatting. Everything a
// workflow needs (roots, config, passphrase, executable path) is passed in
// its options; nothing is read from the working directory or the terminal.
//
// # Available Workflows
//
//   - Export: encrypts a profile's secrets and the shared secrets into an
//     export directory, with the executable and config file alongside
//   - Import: verifies an export and decrypts a profile's secrets and
//     additional imports into a secrets tree, then reconciles symlinks
//   - VerifyExport: checks an export directory against its manifest
//   - Status: reports which declared secrets are present and match their sidecar
//   - Checksum: writes missing sidecars
//
// # Failure Model
//
// Runs are sequential and fail fast. Nothing is rolled back: after a failed
// export or import the tree holds whatever was completed before the failing
// step, and the operator should discard it and start over.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package. Use
// errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Import(ctx, opts)
//	if errors.Is(err, kerrors.ErrContentMismatch) {
//	    // a target file was edited by hand
//	}
//
// Export, Import and VerifyExport record an audit entry whatever the outcome.
package workflows
