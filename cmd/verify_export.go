package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/workflows"

	"github.com/spf13/cobra"
)

var verifyExportCmd = &cobra.Command{
	Use:   "verify-export <source>",
	Short: "Check an export directory against its manifest",
	Long: `Recomputes the digest of every file listed in the export's sha256sums.txt
and compares it to the recorded one. Nothing is decrypted, so no passphrase
or config is needed.

Examples:
  secrets-manager verify-export /media/usb/secrets`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting verify-export command")
		source := args[0]

		spinner, cleanup := startSpinner("Verifying export...")
		defer cleanup()

		result, err := workflows.VerifyExport(context.Background(), workflows.VerifyExportOptions{
			Profile: profileName,
			Source:  source,
		})
		if err != nil {
			spinner.FinalMSG = ui.Mark(false) + " Export at " + ui.Path.Sprint(source) + " is not reliable"
			return err
		}

		spinner.FinalMSG = ui.Mark(true) + " " + fmt.Sprintf("%d files", result.Files) + " in " + ui.Path.Sprint(source) + " match their checksums"
		return nil
	},
}
