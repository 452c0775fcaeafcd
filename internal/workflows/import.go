package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/secrets-manager/internal/audit"
	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/configs"
	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	logger "github.com/PolarWolf314/secrets-manager/internal/logging"
	"github.com/PolarWolf314/secrets-manager/internal/safefs"
	"github.com/PolarWolf314/secrets-manager/internal/secrets"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	Profile string

	// Source is an export directory, Target the plaintext secrets tree.
	// Both must exist.
	Source string
	Target string

	Config     *configs.Config
	Passphrase *secrets.Passphrase

	Logger logger.Logger
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	// Imported lists secrets written by this run.
	Imported []string

	// Unchanged lists secrets already present with identical content.
	Unchanged []string

	// SymlinksCreated lists the symlink destinations created by this run.
	SymlinksCreated []string

	// SymlinksExisting lists destinations that already pointed at the secret.
	SymlinksExisting []string
}

// FilesCount is the number of secrets covered by the import.
func (r *ImportResult) FilesCount() int {
	return len(r.Imported) + len(r.Unchanged)
}

// Import decrypts the profile's own secrets, then its additional imports,
// from Source into Target. The whole export is verified against its manifest
// before anything is written. Files are written with safefs.SafeWrite, so
// existing files with other content are never replaced. Each imported file
// gets the owner and mode of its ciphertext and is verified against its
// sidecar. When the profile has a symlink template, a symlink to every
// imported secret is reconciled afterwards.
//
// Any error aborts the import; secrets imported before it stay in place.
//
// Returns a PathError if Source or Target is not a directory.
// Returns ErrManifest if the export fails verification.
// Returns ErrCrypto if a ciphertext does not decrypt.
// Returns ErrContentMismatch if a target file holds other content.
// Returns ErrSymlinkConflict if a symlink destination is occupied.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	entry := audit.NewEntry("import", opts.Profile)
	entry.Source = opts.Source
	entry.Target = opts.Target

	err := importSecrets(opts, result)

	entry.Finish(result.FilesCount(), err)
	audit.Log(entry)

	return result, err
}

func importSecrets(opts ImportOptions, result *ImportResult) error {
	if err := utils.RequireDir(opts.Source); err != nil {
		return err
	}
	if err := utils.RequireDir(opts.Target); err != nil {
		return err
	}

	opts.Logger.Infof("verifying export at '%s'...", opts.Source)
	if err := checksum.VerifyAll(opts.Source); err != nil {
		return err
	}

	paths := opts.Config.ImportPaths(opts.Profile)
	for _, rel := range paths {
		opts.Logger.Infof("importing '%s'...", rel)
		written, err := importSecret(opts, rel)
		if err != nil {
			return fmt.Errorf("importing '%s': %w", rel, err)
		}

		if written {
			result.Imported = append(result.Imported, rel)
		} else {
			opts.Logger.Infof("'%s' is already imported", rel)
			result.Unchanged = append(result.Unchanged, rel)
		}
	}

	for _, rel := range paths {
		link, ok := opts.Config.SymlinkDestination(opts.Profile, rel)
		if !ok {
			break
		}

		want, err := filepath.Abs(filepath.Join(opts.Target, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}

		created, err := reconcileSymlink(link, want)
		if err != nil {
			return err
		}
		if created {
			opts.Logger.Infof("linked '%s' -> '%s'", link, want)
			result.SymlinksCreated = append(result.SymlinksCreated, link)
		} else {
			result.SymlinksExisting = append(result.SymlinksExisting, link)
		}
	}

	return nil
}

// importSecret materializes one secret. It reports false when the target
// already held identical content.
func importSecret(opts ImportOptions, rel string) (bool, error) {
	encPath := filepath.Join(opts.Source, filepath.FromSlash(secrets.EncryptedPath(rel)))
	srcSidecar := checksum.SidecarPath(filepath.Join(opts.Source, filepath.FromSlash(rel)))
	dstPath := filepath.Join(opts.Target, filepath.FromSlash(rel))

	ciphertext, err := os.ReadFile(encPath)
	if err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableFile, File: encPath, Err: err}
	}

	plaintext, err := opts.Passphrase.Decrypt(ciphertext)
	if err != nil {
		var cerr *kerrors.CryptoError
		if errors.As(err, &cerr) && cerr.Path == "" {
			cerr.Path = encPath
		}
		return false, err
	}

	meta, err := metadataOf(encPath)
	if err != nil {
		return false, err
	}

	sidecar, err := os.ReadFile(srcSidecar)
	if err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: srcSidecar, Err: err}
	}

	// #nosec G301 -- secrets themselves are written with restricted modes.
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return false, err
	}

	res, err := safefs.SafeWrite(dstPath, plaintext, 0600)
	if err != nil {
		return false, err
	}
	if _, err := safefs.SafeWrite(checksum.SidecarPath(dstPath), sidecar, 0644); err != nil {
		return false, err
	}

	if err := meta.apply(dstPath); err != nil {
		return false, err
	}
	if err := meta.apply(checksum.SidecarPath(dstPath)); err != nil {
		return false, err
	}

	if err := checksum.VerifyOne(opts.Target, rel); err != nil {
		return false, err
	}
	return res == safefs.Written, nil
}

// reconcileSymlink makes link point at want. It reports true when the link
// was created and false when a correct link was already there.
func reconcileSymlink(link, want string) (bool, error) {
	info, err := os.Lstat(link)
	if errors.Is(err, fs.ErrNotExist) {
		// #nosec G301 -- directories only hold links.
		if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
			return false, err
		}
		if err := os.Symlink(want, link); err != nil {
			return false, fmt.Errorf("creating symlink '%s': %w", link, err)
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		return false, &kerrors.SymlinkConflictError{Link: link, Want: want}
	}

	got, err := os.Readlink(link)
	if err != nil {
		return false, err
	}
	if got != want {
		return false, &kerrors.SymlinkConflictError{Link: link, Want: want, Got: got}
	}
	return false, nil
}
