package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	statusSource string
	statusMatch  string
)

func init() {
	statusCmd.Flags().StringVarP(&statusSource, "source", "s", DefaultSecretsRoot, "secrets tree to inspect")
	statusCmd.Flags().StringVar(&statusMatch, "match", "", "only show secrets matching this glob (** crosses directories)")
}

// resetStatusCommandState resets the status command's global state for testing.
func resetStatusCommandState() {
	statusSource = DefaultSecretsRoot
	statusMatch = ""
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which declared secrets are present and checksummed",
	Long: `Lists every secret the profile exports (its own, then shared) or imports,
with its state in the source tree:

  ok            present and matching its .sha256 sidecar
  missing       not present
  no checksum   present without a sidecar (see 'checksum' or --create-checksums)
  mismatch      content differs from its sidecar
  broken        sidecar unreadable or malformed

Examples:
  secrets-manager status
  secrets-manager status -p laptop --match 'ssh/**'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profile, err := resolveProfile(cfg)
		if err != nil {
			return err
		}

		result, err := workflows.Status(context.Background(), workflows.StatusOptions{
			Profile: profile,
			Source:  statusSource,
			Config:  cfg,
			Match:   statusMatch,
		})
		if err != nil {
			return err
		}

		fmt.Print(formatStatus(profile, result))
		return nil
	},
}

func formatStatus(profile string, result *workflows.StatusResult) string {
	var b strings.Builder

	b.WriteString("Secrets of " + ui.Highlight.Sprint(profile) + " in " + ui.Path.Sprint(statusSource) + ":\n")
	if len(result.Files) == 0 {
		b.WriteString("   " + ui.Muted.Sprint("none") + "\n")
		return b.String()
	}

	for _, f := range result.Files {
		var state string
		switch f.Status {
		case workflows.StatusOK:
			state = ui.Success.Sprint("ok")
		case workflows.StatusMissing:
			state = ui.Error.Sprint("missing")
		case workflows.StatusNoChecksum:
			state = ui.Warning.Sprint("no checksum")
		case workflows.StatusMismatch:
			state = ui.Error.Sprint("mismatch")
		default:
			state = ui.Error.Sprint("broken")
		}

		fmt.Fprintf(&b, "   %s %s %s %s\n", ui.Mark(f.Status == workflows.StatusOK), ui.Path.Sprint(f.Path), ui.Muted.Sprint(string(f.Role)), state)
		if f.Detail != "" && verbose {
			b.WriteString("      " + f.Detail + "\n")
		}
	}

	s := result.Summary
	fmt.Fprintf(&b, "\n%d ok, %d missing, %d without checksum, %d mismatched, %d broken\n",
		s.OK, s.Missing, s.NoChecksum, s.Mismatch, s.Broken)
	return b.String()
}
