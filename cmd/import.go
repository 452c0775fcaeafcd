package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
	"github.com/PolarWolf314/secrets-manager/internal/workflows"

	"github.com/spf13/cobra"
)

var importTarget string

func init() {
	importCmd.Flags().StringVarP(&importTarget, "target", "t", DefaultSecretsRoot, "secrets tree to import into")
}

// resetImportCommandState resets the import command's global state for testing.
func resetImportCommandState() {
	importTarget = DefaultSecretsRoot
}

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Decrypt the profile's secrets from an export directory",
	Long: `Verifies the whole export against its sha256sums.txt, then decrypts the
secrets owned by the profile followed by its additional imports into the
target tree. Each file gets the owner and mode recorded in the export and is
checked against its .sha256 sidecar.

Existing files are never overwritten: a file that already holds the same
content is skipped, a file with different content stops the import.

If the profile has a symlink template, a symlink to every imported secret is
created, or checked if already present.

Examples:
  # Import this host's secrets from a USB drive
  secrets-manager import /media/usb/secrets

  # Import into a scratch tree to inspect an export
  secrets-manager import -t /tmp/restore /media/usb/secrets`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")
		source := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profile, err := resolveProfile(cfg)
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase(profile, false)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner(fmt.Sprintf("Importing secrets of %s...", profile))
		defer cleanup()

		recorder := newRecorder()
		start := time.Now()

		result, err := workflows.Import(context.Background(), workflows.ImportOptions{
			Profile:    profile,
			Source:     source,
			Target:     importTarget,
			Config:     cfg,
			Passphrase: passphrase,
			Logger:     Logger,
		})

		recorder.Files("import", "imported", len(result.Imported))
		recorder.Files("import", "unchanged", len(result.Unchanged))
		recorder.RunFinished("import", start, err)
		writeMetrics(recorder)

		if err != nil {
			spinner.FinalMSG = failureMessage("Import", importTarget)
			return err
		}

		finalMessage := ui.Mark(true) + " Imported " + ui.Highlight.Sprint(profile) + " into " + ui.Path.Sprint(importTarget) + "\n" +
			fmt.Sprintf("   %d written, %d already present", len(result.Imported), len(result.Unchanged))
		if n := len(result.SymlinksCreated) + len(result.SymlinksExisting); n > 0 {
			finalMessage += fmt.Sprintf(", %d symlinks (%d new)", n, len(result.SymlinksCreated))
		}
		if verbose && len(result.Imported) > 0 {
			finalMessage += "\n   Written:" + utils.FormatPaths(result.Imported)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
