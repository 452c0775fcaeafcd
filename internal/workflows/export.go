package workflows

import (
	"bytes"
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
	"github.com/PolarWolf314/secrets-manager/internal/secrets"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
)

// ExportOptions configures the export workflow.
type ExportOptions struct {
	Profile string

	// Source is the plaintext secrets tree, Target the export directory.
	// Both must exist.
	Source string
	Target string

	Config     *configs.Config
	Passphrase *secrets.Passphrase

	// Executable is copied into the export so it can be imported on a fresh
	// machine. Empty skips it.
	Executable string

	// CreateChecksums writes missing source sidecars before verifying them.
	CreateChecksums bool

	Logger logger.Logger
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	// Exported lists secrets whose ciphertext was written by this run.
	Exported []string

	// Unchanged lists secrets whose existing ciphertext already matched.
	Unchanged []string

	// Artifacts lists the executable and config copies, by target name.
	Artifacts []string

	// SidecarsCreated lists source sidecars written because of CreateChecksums.
	SidecarsCreated []string
}

// FilesCount is the number of secrets covered by the export.
func (r *ExportResult) FilesCount() int {
	return len(r.Exported) + len(r.Unchanged)
}

// Export encrypts the profile's secrets, then the shared secrets, from
// Source into Target, followed by the executable and config file. Every
// ciphertext is decrypted again after writing and compared to its plaintext.
// The run ends with a full manifest verification of Target.
//
// Any error aborts the export. Files written before the failure stay in
// place and the target tree must be considered unreliable.
//
// Returns a PathError if Source or Target is not a directory.
// Returns ErrPassphraseChanged if an existing ciphertext cannot be decrypted.
// Returns ErrContentMismatch if an existing ciphertext holds other content.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	result := &ExportResult{}

	entry := audit.NewEntry("export", opts.Profile)
	entry.Source = opts.Source
	entry.Target = opts.Target

	err := export(opts, result)

	entry.Finish(result.FilesCount(), err)
	audit.Log(entry)

	return result, err
}

func export(opts ExportOptions, result *ExportResult) error {
	if err := utils.RequireDir(opts.Source); err != nil {
		return err
	}
	if err := utils.RequireDir(opts.Target); err != nil {
		return err
	}

	for _, rel := range opts.Config.ExportPaths(opts.Profile) {
		if opts.CreateChecksums {
			created, err := checksum.EnsureSidecar(opts.Source, rel)
			if err != nil {
				return err
			}
			if created {
				opts.Logger.Infof("created checksum for '%s'", rel)
				result.SidecarsCreated = append(result.SidecarsCreated, rel)
			}
		}

		opts.Logger.Infof("exporting '%s'...", rel)
		unchanged, err := exportSecret(opts, rel)
		if err != nil {
			return fmt.Errorf("exporting '%s': %w", rel, err)
		}

		if unchanged {
			opts.Logger.Infof("'%s' is already exported", rel)
			result.Unchanged = append(result.Unchanged, rel)
		} else {
			result.Exported = append(result.Exported, rel)
		}
	}

	if opts.Executable != "" {
		name := filepath.Base(opts.Executable)
		content, err := os.ReadFile(opts.Executable)
		if err != nil {
			return fmt.Errorf("reading executable '%s': %w", opts.Executable, err)
		}
		opts.Logger.Infof("exporting executable '%s'...", name)
		if err := exportArtifact(opts, name, content, 0755); err != nil {
			return err
		}
		result.Artifacts = append(result.Artifacts, name)
	}

	name := opts.Config.FileName()
	opts.Logger.Infof("exporting config '%s'...", name)
	if err := exportArtifact(opts, name, opts.Config.Source(), 0644); err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, name)

	opts.Logger.Infof("verifying export...")
	return checksum.VerifyAll(opts.Target)
}

// exportSecret encrypts one secret into the target tree. It reports true when
// an existing ciphertext already decrypts to the current plaintext.
func exportSecret(opts ExportOptions, rel string) (bool, error) {
	srcPath := filepath.Join(opts.Source, filepath.FromSlash(rel))
	encRel := secrets.EncryptedPath(rel)
	encPath := filepath.Join(opts.Target, filepath.FromSlash(encRel))
	sidecarRel := rel + checksum.SidecarSuffix

	if err := checksum.VerifyOne(opts.Source, rel); err != nil {
		return false, err
	}

	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableFile, File: srcPath, Err: err}
	}

	meta, err := metadataOf(srcPath)
	if err != nil {
		return false, err
	}

	unchanged, err := matchesExisting(opts.Passphrase, encPath, plaintext)
	if err != nil {
		return false, err
	}

	if !unchanged {
		// #nosec G301 -- directories only hold ciphertexts and checksums.
		if err := os.MkdirAll(filepath.Dir(encPath), 0755); err != nil {
			return false, err
		}

		ciphertext, err := opts.Passphrase.Encrypt(plaintext)
		if err != nil {
			return false, err
		}

		if err := os.WriteFile(encPath, ciphertext, 0600); err != nil {
			return false, fmt.Errorf("writing '%s': %w", encPath, err)
		}

		if err := verifyCiphertext(opts.Passphrase, encPath, plaintext); err != nil {
			return false, err
		}
	}

	// Skipped ciphertexts still take the source's current owner and mode.
	if err := meta.apply(encPath); err != nil {
		return false, err
	}

	sidecar, err := os.ReadFile(checksum.SidecarPath(srcPath))
	if err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableManifest, Manifest: checksum.SidecarPath(srcPath), Err: err}
	}
	sidecarPath := filepath.Join(opts.Target, filepath.FromSlash(sidecarRel))
	// #nosec G306 -- checksums are not secret.
	if err := os.WriteFile(sidecarPath, sidecar, 0644); err != nil {
		return false, fmt.Errorf("writing '%s': %w", sidecarPath, err)
	}

	if err := checksum.Generate(opts.Target, []string{encRel, sidecarRel}); err != nil {
		return false, err
	}
	return unchanged, nil
}

// matchesExisting reports whether a ciphertext already at encPath decrypts
// to plaintext. A ciphertext holding other content is a ContentMismatchError;
// one that does not decrypt at all was made with another passphrase.
func matchesExisting(passphrase *secrets.Passphrase, encPath string, plaintext []byte) (bool, error) {
	existing, err := os.ReadFile(encPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &kerrors.ManifestError{Kind: kerrors.UnreadableFile, File: encPath, Err: err}
	}

	decrypted, err := passphrase.Decrypt(existing)
	if err != nil {
		return false, &kerrors.CryptoError{
			Op:   "decrypt existing export",
			Path: encPath,
			Err:  fmt.Errorf("%w: %v", kerrors.ErrPassphraseChanged, err),
		}
	}
	if !bytes.Equal(decrypted, plaintext) {
		return false, &kerrors.ContentMismatchError{Path: encPath}
	}
	return true, nil
}

// verifyCiphertext reads encPath back and checks it decrypts to plaintext.
func verifyCiphertext(passphrase *secrets.Passphrase, encPath string, plaintext []byte) error {
	written, err := os.ReadFile(encPath)
	if err != nil {
		return fmt.Errorf("%w: reading back '%s': %v", kerrors.ErrVerifyFailed, encPath, err)
	}

	decrypted, err := passphrase.Decrypt(written)
	if err != nil {
		return &kerrors.CryptoError{Op: "verify", Path: encPath, Err: fmt.Errorf("%w: %v", kerrors.ErrVerifyFailed, err)}
	}
	if !bytes.Equal(decrypted, plaintext) {
		return fmt.Errorf("%w: '%s' does not decrypt to the source content", kerrors.ErrVerifyFailed, encPath)
	}
	return nil
}

// exportArtifact writes a plaintext artifact at the top of the target tree,
// reads it back, and records it in the manifest.
func exportArtifact(opts ExportOptions, name string, content []byte, perm os.FileMode) error {
	target := opts.Target
	path := filepath.Join(target, name)

	if previous, err := os.ReadFile(path); err == nil && !bytes.Equal(previous, content) {
		opts.Logger.Debugf("replacing '%s': content differs from the previous export", path)
	}

	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	// WriteFile leaves the mode of an existing file alone.
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting mode of '%s': %w", path, err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading back '%s': %v", kerrors.ErrVerifyFailed, path, err)
	}
	if !bytes.Equal(written, content) {
		return fmt.Errorf("%w: '%s' does not match what was written", kerrors.ErrVerifyFailed, path)
	}

	return checksum.Append(target, name)
}
