package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
	"github.com/PolarWolf314/secrets-manager/internal/workflows"

	"github.com/spf13/cobra"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <dir> <file>...",
	Short: "Write missing .sha256 sidecars",
	Long: `Writes <file>.sha256 next to each file, relative to <dir>, unless it
already exists. Existing sidecars are never rewritten; use 'status' to find
the ones that no longer match.

Examples:
  secrets-manager checksum /secrets db.key ssh/id_ed25519`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting checksum command")

		files := make([]string, 0, len(args)-1)
		for _, f := range args[1:] {
			files = append(files, filepath.ToSlash(f))
		}

		result, err := workflows.Checksum(context.Background(), workflows.ChecksumOptions{
			Dir:   args[0],
			Files: files,
		})
		if err != nil {
			return err
		}

		finalMessage := ui.Mark(true) + fmt.Sprintf(" %d checksums created, %d already present", len(result.Created), len(result.Existing))
		if len(result.Created) > 0 {
			finalMessage += "\n   Created:" + utils.FormatPaths(result.Created)
		}
		fmt.Println(finalMessage)
		return nil
	},
}
