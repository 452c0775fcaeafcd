package errors

import (
	"errors"
	"fmt"
)

// Category errors. Every typed error in this package matches exactly one of
// these with errors.Is.
var (
	// ErrPath indicates a filesystem root is missing or is not a directory.
	ErrPath = errors.New("invalid path")

	// ErrManifest indicates an integrity manifest or sidecar problem.
	ErrManifest = errors.New("integrity check failed")

	// ErrConfig indicates the configuration file is missing or invalid.
	ErrConfig = errors.New("invalid configuration")

	// ErrCrypto indicates an encryption or decryption failure.
	ErrCrypto = errors.New("cryptographic operation failed")

	// ErrContentMismatch indicates a safe write found different existing content.
	ErrContentMismatch = errors.New("existing file content does not match")

	// ErrSymlinkConflict indicates something unexpected occupies a symlink destination.
	ErrSymlinkConflict = errors.New("symlink conflict")
)

// Manifest errors.
var (
	// ErrMissingManifest indicates the manifest or sidecar file is absent.
	ErrMissingManifest = errors.New("missing checksum file")

	// ErrMalformedManifest indicates a line does not match the checksum grammar.
	ErrMalformedManifest = errors.New("ill-formatted checksum file")

	// ErrUnreadableManifest indicates the manifest could not be read or written.
	ErrUnreadableManifest = errors.New("failed to access checksum file")

	// ErrUnreadableFile indicates a described file could not be read.
	ErrUnreadableFile = errors.New("failed to read file")

	// ErrChecksumMismatch indicates a file does not match its recorded digest.
	ErrChecksumMismatch = errors.New("file does not match its checksum")
)

// Cryptographic errors.
var (
	// ErrEncryptFailed indicates file encryption failed.
	ErrEncryptFailed = errors.New("failed to encrypt file")

	// ErrDecryptFailed indicates decryption failed, either because the
	// passphrase is wrong or the ciphertext was tampered with.
	ErrDecryptFailed = errors.New("failed to decrypt file")

	// ErrPassphraseChanged indicates an existing export could not be
	// decrypted with the current passphrase.
	ErrPassphraseChanged = errors.New("existing export cannot be decrypted with this passphrase")

	// ErrVerifyFailed indicates a just-written file did not read back as expected.
	ErrVerifyFailed = errors.New("written file failed verification")
)

// PathError reports a filesystem root that cannot be used.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path '%s' %s", e.Path, e.Reason)
}

func (e *PathError) Is(target error) bool { return target == ErrPath }

// ManifestKind classifies a ManifestError.
type ManifestKind int

const (
	MissingManifest ManifestKind = iota
	MalformedManifest
	UnreadableManifest
	UnreadableFile
	ChecksumMismatch
)

func (k ManifestKind) sentinel() error {
	switch k {
	case MissingManifest:
		return ErrMissingManifest
	case MalformedManifest:
		return ErrMalformedManifest
	case UnreadableManifest:
		return ErrUnreadableManifest
	case UnreadableFile:
		return ErrUnreadableFile
	default:
		return ErrChecksumMismatch
	}
}

// ManifestError reports a failure of the integrity manifest subsystem.
// File is the described file (if any), Manifest the checksum file involved.
type ManifestError struct {
	Kind     ManifestKind
	File     string
	Manifest string
	Err      error
}

func (e *ManifestError) Error() string {
	var msg string
	switch e.Kind {
	case MissingManifest:
		msg = fmt.Sprintf("missing checksum file at path '%s'", e.Manifest)
	case MalformedManifest:
		msg = fmt.Sprintf("ill-formatted checksum file at path '%s'", e.Manifest)
	case UnreadableManifest:
		msg = fmt.Sprintf("failed to access checksum file at path '%s'", e.Manifest)
	case UnreadableFile:
		msg = fmt.Sprintf("failed to read file at path '%s'", e.File)
	default:
		return fmt.Sprintf("file at path '%s' doesn't match its hash at path '%s'. Possible integrity issue", e.File, e.Manifest)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ManifestError) Is(target error) bool {
	return target == ErrManifest || target == e.Kind.sentinel()
}

func (e *ManifestError) Unwrap() error { return e.Err }

// ConfigKind classifies a ConfigError.
type ConfigKind int

const (
	MissingConfig ConfigKind = iota
	UnreadableConfig
	UnparsableConfig
	InvalidSchema
	RootPath
	CurrentDirPath
	ParentDirPath
	EmptyPath
	DuplicateSecret
	OwnershipConflict
	DuplicateImport
	DeclaredRedundant
	DeclaredMissing
	InvalidSymlinkTemplate
)

// ConfigError reports an invalid configuration. Profile and OtherProfile name
// the profiles involved; Path is the offending declared path or config file.
type ConfigError struct {
	Kind         ConfigKind
	Profile      string
	OtherProfile string
	Path         string
	Err          error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case MissingConfig:
		return "could not find any config file. Add one in the current directory or in $XDG_CONFIG_HOME/secrets-manager"
	case UnreadableConfig:
		return fmt.Sprintf("failed to read config file at path '%s': %v", e.Path, e.Err)
	case UnparsableConfig:
		return fmt.Sprintf("failed to parse config file at path '%s': %v", e.Path, e.Err)
	case InvalidSchema:
		return fmt.Sprintf("config file at path '%s' does not match the expected structure: %v", e.Path, e.Err)
	case RootPath:
		return fmt.Sprintf("profile '%s': paths must be relative paths, but '%s' contains a reference to the root directory", e.Profile, e.Path)
	case CurrentDirPath:
		return fmt.Sprintf("profile '%s': paths must be normalized paths, but '%s' contains '.'", e.Profile, e.Path)
	case ParentDirPath:
		return fmt.Sprintf("profile '%s': paths must be normalized paths, but '%s' contains '..'", e.Profile, e.Path)
	case EmptyPath:
		return fmt.Sprintf("profile '%s' declares an empty path", e.Profile)
	case DuplicateSecret:
		return fmt.Sprintf("profile '%s' declares secret '%s' multiple times", e.Profile, e.Path)
	case OwnershipConflict:
		return fmt.Sprintf("secret '%s' is declared (hence owned) by multiple profiles: '%s', '%s'", e.Path, e.Profile, e.OtherProfile)
	case DuplicateImport:
		return fmt.Sprintf("profile '%s' declares additional import '%s' multiple times", e.Profile, e.Path)
	case DeclaredRedundant:
		return fmt.Sprintf("profile '%s' declares additional import '%s' but it is already the owner of said secret, so it's redundant", e.Profile, e.Path)
	case DeclaredMissing:
		return fmt.Sprintf("profile '%s' declares additional import '%s' which is never declared as a secret by any profile", e.Profile, e.Path)
	case InvalidSymlinkTemplate:
		return fmt.Sprintf("profile '%s' has invalid symlink template '%s': %v", e.Profile, e.Path, e.Err)
	default:
		return "invalid configuration"
	}
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func (e *ConfigError) Unwrap() error { return e.Err }

// CryptoError reports an encryption or decryption failure for a file.
type CryptoError struct {
	Op   string
	Path string
	Err  error
}

func (e *CryptoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *CryptoError) Is(target error) bool { return target == ErrCrypto }

func (e *CryptoError) Unwrap() error { return e.Err }

// ContentMismatchError reports a safe write refused because the existing
// file differs from the intended content.
type ContentMismatchError struct {
	Path string
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("file at '%s' already exists and its content does not match the content meant to be written to it. Refusing to override it", e.Path)
}

func (e *ContentMismatchError) Is(target error) bool { return target == ErrContentMismatch }

// SymlinkConflictError reports a symlink destination that is occupied by a
// regular file or by a symlink pointing elsewhere. Got is empty when the
// destination is not a symlink.
type SymlinkConflictError struct {
	Link string
	Want string
	Got  string
}

func (e *SymlinkConflictError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("'%s' already exists and is not a symlink (expected a symlink to '%s')", e.Link, e.Want)
	}
	return fmt.Sprintf("symlink '%s' points to '%s' instead of '%s'", e.Link, e.Got, e.Want)
}

func (e *SymlinkConflictError) Is(target error) bool { return target == ErrSymlinkConflict }
