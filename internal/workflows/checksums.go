package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
)

// ChecksumOptions configures the checksum workflow.
type ChecksumOptions struct {
	// Dir is the directory the files are relative to.
	Dir string

	// Files are slash-separated paths relative to Dir.
	Files []string
}

// ChecksumResult contains the outcome of a checksum operation.
type ChecksumResult struct {
	// Created lists files whose sidecar was written by this run.
	Created []string

	// Existing lists files that already had a sidecar.
	Existing []string
}

// Checksum writes the missing sidecars of Files. Existing sidecars are left
// untouched, even when they no longer match; use status to find those.
//
// Returns a PathError if Dir is not a directory.
func Checksum(ctx context.Context, opts ChecksumOptions) (*ChecksumResult, error) {
	if err := utils.RequireDir(opts.Dir); err != nil {
		return nil, err
	}

	result := &ChecksumResult{}
	for _, rel := range opts.Files {
		created, err := checksum.EnsureSidecar(opts.Dir, rel)
		if err != nil {
			return result, fmt.Errorf("creating checksum for '%s': %w", rel, err)
		}
		if created {
			result.Created = append(result.Created, rel)
		} else {
			result.Existing = append(result.Existing, rel)
		}
	}
	return result, nil
}
