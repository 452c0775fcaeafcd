package workflows

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/configs"
	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	"github.com/PolarWolf314/secrets-manager/internal/secrets"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
)

// FileStatus represents the state of a declared secret in the source tree.
type FileStatus string

const (
	// StatusOK means the secret matches its sidecar.
	StatusOK FileStatus = "ok"
	// StatusMissing means the secret does not exist.
	StatusMissing FileStatus = "missing"
	// StatusNoChecksum means the secret has no sidecar yet.
	StatusNoChecksum FileStatus = "no_checksum"
	// StatusMismatch means the secret differs from its sidecar.
	StatusMismatch FileStatus = "mismatch"
	// StatusBroken means the sidecar is malformed or a file is unreadable.
	StatusBroken FileStatus = "broken"
)

// SecretRole tells why a secret concerns the profile.
type SecretRole string

const (
	RoleOwned    SecretRole = "owned"
	RoleShared   SecretRole = "shared"
	RoleImported SecretRole = "imported"
)

// FileStatusInfo holds the status of one declared secret.
type FileStatusInfo struct {
	Path   string
	Role   SecretRole
	Status FileStatus

	// Detail is the underlying error for broken and mismatched files.
	Detail string
}

// StatusSummary holds counts of files by status.
type StatusSummary struct {
	OK         int
	Missing    int
	NoChecksum int
	Mismatch   int
	Broken     int
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Profile string
	Source  string
	Config  *configs.Config

	// Match restricts the report to paths matching this glob.
	Match string
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	Files   []FileStatusInfo
	Summary StatusSummary
}

// Status reports, for every secret the profile exports or imports, whether
// it is present in Source and matches its sidecar. Exportable secrets come
// first (owned, then shared), then additional imports.
//
// Returns a PathError if Source is not a directory.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	if err := utils.RequireDir(opts.Source); err != nil {
		return nil, err
	}

	var paths []string
	roles := make(map[string]SecretRole)
	add := func(list []string, role SecretRole) {
		for _, p := range list {
			if _, seen := roles[p]; !seen {
				roles[p] = role
				paths = append(paths, p)
			}
		}
	}
	add(opts.Config.Secrets(opts.Profile), RoleOwned)
	if opts.Profile != configs.SharedProfile {
		add(opts.Config.Secrets(configs.SharedProfile), RoleShared)
	}
	add(opts.Config.AdditionalImports(opts.Profile), RoleImported)

	paths, err := secrets.FilterPaths(paths, opts.Match)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{}
	for _, rel := range paths {
		info := fileStatus(opts.Source, rel)
		info.Role = roles[rel]

		switch info.Status {
		case StatusOK:
			result.Summary.OK++
		case StatusMissing:
			result.Summary.Missing++
		case StatusNoChecksum:
			result.Summary.NoChecksum++
		case StatusMismatch:
			result.Summary.Mismatch++
		default:
			result.Summary.Broken++
		}
		result.Files = append(result.Files, info)
	}
	return result, nil
}

func fileStatus(dir, rel string) FileStatusInfo {
	info := FileStatusInfo{Path: rel}

	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); errors.Is(err, fs.ErrNotExist) {
		info.Status = StatusMissing
		return info
	}

	err := checksum.VerifyOne(dir, rel)
	switch {
	case err == nil:
		info.Status = StatusOK
	case errors.Is(err, kerrors.ErrMissingManifest):
		info.Status = StatusNoChecksum
	case errors.Is(err, kerrors.ErrChecksumMismatch):
		info.Status = StatusMismatch
		info.Detail = err.Error()
	default:
		info.Status = StatusBroken
		info.Detail = err.Error()
	}
	return info
}
