package cmd

import (
	"fmt"

	logger "github.com/PolarWolf314/secrets-manager/internal/logging"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultSecretsRoot is where the plaintext secrets tree lives by default.
const DefaultSecretsRoot = "/secrets"

var (
	verbose     bool
	debug       bool
	profileName string
	configPath  string
	useKeyring  bool
	metricsFile string
	Logger      logger.Logger

	RootCmd = &cobra.Command{
		Use:   "secrets-manager",
		Short: "Move secrets between a machine and an encrypted, checksummed export",
		Long: `secrets-manager exports the secrets owned by a profile into an encrypted
directory (for example on a USB drive) and imports them back on another machine.

Every file is checksummed: exports carry a sha256sums.txt manifest and a
.sha256 sidecar per secret, and nothing is imported before the whole export
verifies. Imports never overwrite files whose content differs.

Profiles, the secrets they own and the secrets they additionally import are
declared in secrets-manager.toml (or .yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewColorFigure("secrets", "standard", "green", true)
			banner.Print()
			fmt.Println()
			fmt.Println("Run 'secrets-manager --help' to see available commands.")
		},
	}
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.StringVarP(&profileName, "profile", "p", "", "profile to act as (default: hostname)")
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: searched in $XDG_CONFIG_HOME/secrets-manager, then .)")
	flags.BoolVar(&useKeyring, "keyring", false, "read the passphrase from the OS keyring instead of prompting")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")

	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(verifyExportCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(checksumCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables and flags to their default
// values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	profileName = ""
	configPath = ""
	useKeyring = false
	metricsFile = ""
	resetExportCommandState()
	resetImportCommandState()
	resetStatusCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState marks every flag of cmd and its subcommands unchanged
// to prevent test pollution.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
