package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/secrets-manager/internal/secrets"
	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
	"github.com/PolarWolf314/secrets-manager/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	exportSource          string
	exportCreateChecksums bool
	exportWorkFactor      uint8
)

func init() {
	exportCmd.Flags().StringVarP(&exportSource, "source", "s", DefaultSecretsRoot, "secrets tree to export from")
	exportCmd.Flags().BoolVar(&exportCreateChecksums, "create-checksums", false, "write missing .sha256 sidecars in the source before exporting")
	exportCmd.Flags().Uint8Var(&exportWorkFactor, "work-factor", secrets.DefaultWorkFactor, "log2 of the scrypt cost for new ciphertexts")
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportSource = DefaultSecretsRoot
	exportCreateChecksums = false
	exportWorkFactor = secrets.DefaultWorkFactor
}

var exportCmd = &cobra.Command{
	Use:   "export <target>",
	Short: "Encrypt the profile's secrets into an export directory",
	Long: `Encrypts every secret owned by the profile, then every secret of the
"shared" profile, into the target directory. Each secret must have a valid
.sha256 sidecar in the source; use --create-checksums to write missing ones.

For every secret the export holds <name>.enc (owner and mode copied from the
source) and <name>.sha256. The running executable and the config file are
copied alongside, everything is recorded in sha256sums.txt, and the whole
export is verified before the command succeeds.

Re-exporting into the same directory is safe: secrets whose ciphertext
already decrypts to the current content are skipped.

Examples:
  # Export this host's secrets to a USB drive
  secrets-manager export /media/usb/secrets

  # Export another profile from a custom source tree
  secrets-manager export -p laptop -s ./secrets /media/usb/secrets`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")
		target := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profile, err := resolveProfile(cfg)
		if err != nil {
			return err
		}

		if err := secrets.SetWorkFactor(exportWorkFactor); err != nil {
			return Logger.ErrorfAndReturn("invalid --work-factor: %v", err)
		}

		exe, err := executablePath()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to locate the running executable: %v", err)
		}
		Logger.Debugf("Executable: %s", exe)

		passphrase, err := readPassphrase(profile, true)
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner(fmt.Sprintf("Exporting secrets of %s...", profile))
		defer cleanup()

		recorder := newRecorder()
		start := time.Now()

		result, err := workflows.Export(context.Background(), workflows.ExportOptions{
			Profile:         profile,
			Source:          exportSource,
			Target:          target,
			Config:          cfg,
			Passphrase:      passphrase,
			Executable:      exe,
			CreateChecksums: exportCreateChecksums,
			Logger:          Logger,
		})

		recorder.Files("export", "exported", len(result.Exported))
		recorder.Files("export", "unchanged", len(result.Unchanged))
		recorder.RunFinished("export", start, err)
		writeMetrics(recorder)

		if err != nil {
			spinner.FinalMSG = failureMessage("Export", target)
			return err
		}

		finalMessage := ui.Mark(true) + " Exported " + ui.Highlight.Sprint(profile) + " to " + ui.Path.Sprint(target) + "\n" +
			fmt.Sprintf("   %d written, %d already up to date", len(result.Exported), len(result.Unchanged))
		if len(result.SidecarsCreated) > 0 {
			finalMessage += fmt.Sprintf(", %d checksums created", len(result.SidecarsCreated))
		}
		if verbose && len(result.Exported) > 0 {
			finalMessage += "\n   Written:" + utils.FormatPaths(result.Exported)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
