package workflows

import (
	"context"

	"github.com/PolarWolf314/secrets-manager/internal/audit"
	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
)

// VerifyExportOptions configures the verify-export workflow.
type VerifyExportOptions struct {
	Profile string
	Source  string
}

// VerifyExportResult contains the outcome of a verify-export operation.
type VerifyExportResult struct {
	// Files is the number of manifest entries checked.
	Files int
}

// VerifyExport checks every file of an export directory against its
// manifest without decrypting anything.
//
// Returns a PathError if Source is not a directory.
// Returns ErrManifest if the manifest is missing, malformed or mismatched.
func VerifyExport(ctx context.Context, opts VerifyExportOptions) (*VerifyExportResult, error) {
	result := &VerifyExportResult{}

	entry := audit.NewEntry("verify-export", opts.Profile)
	entry.Source = opts.Source

	err := verifyExport(opts, result)

	entry.Finish(result.Files, err)
	audit.Log(entry)

	return result, err
}

func verifyExport(opts VerifyExportOptions, result *VerifyExportResult) error {
	if err := utils.RequireDir(opts.Source); err != nil {
		return err
	}

	entries, err := checksum.Read(opts.Source)
	if err != nil {
		return err
	}
	if err := checksum.VerifyAll(opts.Source); err != nil {
		return err
	}

	result.Files = len(entries)
	return nil
}
