// Package configs loads and validates the secrets-manager configuration.
//
// The config declares, per profile, which secrets (relative paths) the
// profile owns, which secrets owned by others it additionally imports, and
// optionally a symlink template used after import:
//
//	[secrets]
//	alice = ["db.key", "ssh/id_ed25519"]
//	bob = ["api.token"]
//	shared = ["ca.pem"]
//
//	[additional_imports]
//	bob = ["db.key"]
//
//	[symlinks]
//	alice = "/home/alice/$path"
//
// TOML is the primary format; YAML files (.yaml, .yml) with the same keys
// are accepted too. Every document is checked against a JSON schema before
// it is decoded, so unknown keys and wrongly typed values are reported early.
//
// # Validation
//
// Validate is a pure function over RawConfig. It rejects absolute paths,
// '.' and '..' components, empty paths, duplicate declarations, secrets
// owned by more than one profile, and additional imports that are duplicate,
// redundant or not owned by anyone. Profiles are visited in name order.
//
// The profile named "shared" is exported together with every profile.
//
// # Discovery
//
// Locate tries, in order, an explicit path, then secrets-manager.{toml,yaml,yml}
// in $XDG_CONFIG_HOME/secrets-manager, then the same names in the working
// directory. Load keeps the file's text so export can copy it byte for byte.
package configs
