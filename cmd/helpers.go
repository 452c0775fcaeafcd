package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/secrets-manager/internal/configs"
	"github.com/PolarWolf314/secrets-manager/internal/metrics"
	"github.com/PolarWolf314/secrets-manager/internal/secrets"
	"github.com/PolarWolf314/secrets-manager/internal/ui"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
	"github.com/briandowns/spinner"
)

// executablePath resolves the binary copied into every export.
var executablePath = utils.Executable

// SetExecutablePath overrides the binary copied into exports, for testing.
func SetExecutablePath(fn func() (string, error)) {
	executablePath = fn
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadConfig locates and validates the config file.
func loadConfig() (*configs.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	path, err := configs.Locate(configPath, configs.UserManagerSettings, wd)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loading config from %s", path)

	return configs.Load(path)
}

// resolveProfile returns the --profile value or the default profile, and
// warns when the config does not mention it.
func resolveProfile(cfg *configs.Config) (string, error) {
	profile := profileName
	if profile == "" {
		var err error
		profile, err = utils.DefaultProfile()
		if err != nil {
			return "", fmt.Errorf("failed to determine default profile: %w", err)
		}
	}
	Logger.Debugf("Using profile %s", profile)

	if cfg != nil && len(cfg.ImportPaths(profile)) == 0 && len(cfg.Secrets(configs.SharedProfile)) == 0 {
		Logger.Warnf("profile '%s' declares no secrets and no additional imports", profile)
	}
	return profile, nil
}

// readPassphrase obtains the run's passphrase from the keyring, a terminal
// prompt (confirmed twice when confirm is set) or stdin, in that order.
func readPassphrase(profile string, confirm bool) (*secrets.Passphrase, error) {
	var raw []byte
	var err error

	switch {
	case useKeyring:
		Logger.Debugf("Reading passphrase from keyring")
		raw, err = utils.KeyringPassphrase(profile)
	case utils.IsTerminal() && confirm:
		raw, err = utils.ReadConfirmedPassphrase("Passphrase: ", "Confirm passphrase: ")
	case utils.IsTerminal():
		raw, err = utils.ReadPassphrase("Passphrase: ")
	default:
		Logger.Debugf("Reading passphrase from stdin")
		raw, err = utils.ReadStdin()
	}
	if err != nil {
		return nil, err
	}

	return secrets.NewPassphrase(raw)
}

// newRecorder returns a metrics recorder when --metrics-file is set.
func newRecorder() *metrics.Recorder {
	if metricsFile == "" {
		return nil
	}
	return metrics.NewRecorder()
}

// writeMetrics writes the recorder's metrics. Failures only warn.
func writeMetrics(r *metrics.Recorder) {
	if r == nil {
		return
	}
	if err := r.WriteTextfile(metricsFile); err != nil {
		Logger.Warnf("failed to write metrics to %s: %v", metricsFile, err)
		return
	}
	Logger.Debugf("Wrote metrics to %s", metricsFile)
}

// failureMessage formats the final message of a failed export or import.
// The error itself is printed by main.
func failureMessage(what, tree string) string {
	return ui.Mark(false) + " " + what + " failed\n" +
		ui.Hint("The tree at "+ui.Path.Sprint(tree)+" may be incomplete and should not be trusted. "+
			"Discard it and start over.")
}
