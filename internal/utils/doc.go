// Package utils provides shared helpers for the secrets-manager CLI.
//
// # System Utilities
//
//   - GetHostname, GetUsername: identify the machine and user
//   - DefaultProfile: the profile used when --profile is not given
//   - Executable: the running binary, exported alongside the secrets
//
// # Filesystem Utilities
//
//   - RequireDir: checks a source or target root before a pipeline runs
//   - FormatPaths: formats file paths for human-readable output
//
// # Passphrase Sources
//
//   - ReadPassphrase, ReadConfirmedPassphrase: hidden terminal prompts
//   - ReadStdin: a passphrase piped on stdin
//   - KeyringPassphrase: a passphrase stored in the OS keyring
package utils
