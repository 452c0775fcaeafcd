// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up test environments,
// capturing output, and building secrets trees and configs.
package shared

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/secrets-manager/cmd"
	"github.com/PolarWolf314/secrets-manager/internal/checksum"
	"github.com/PolarWolf314/secrets-manager/internal/configs"
	logger "github.com/PolarWolf314/secrets-manager/internal/logging"
	"github.com/PolarWolf314/secrets-manager/internal/utils"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

// TestConfig declares two profiles and a shared secret.
const TestConfig = `[secrets]
alice = ["db.key", "ssh/id_ed25519"]
bob = ["api.token"]
shared = ["ca.pem"]

[additional_imports]
bob = ["db.key"]
`

// Env is an isolated environment for one test.
type Env struct {
	// Dir is the working directory, UserDir holds the user config and state.
	Dir     string
	UserDir string

	// Source is a checksummed secrets tree, Export an empty export directory.
	Source string
	Export string

	// Config is the path of the config file written into UserDir.
	Config string
}

// SetupTestEnvironment changes into a temporary directory, points the user
// config and state directories at temporary ones, mocks the OS keyring and
// resets all command state. Everything is restored when the test ends.
func SetupTestEnvironment(t *testing.T) *Env {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	originalUserSettings := configs.UserManagerSettings

	env := &Env{
		Dir:     t.TempDir(),
		UserDir: t.TempDir(),
		Source:  t.TempDir(),
		Export:  t.TempDir(),
	}

	if err := os.Chdir(env.Dir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.UserManagerSettings = originalUserSettings
		cmd.ResetGlobalState()
		cmd.SetExecutablePath(utils.Executable)
	})

	configs.UserManagerSettings = &configs.UserSettings{
		ConfigDir: filepath.Join(env.UserDir, "config"),
		StateDir:  filepath.Join(env.UserDir, "state"),
	}
	keyring.MockInit()
	cmd.ResetGlobalState()

	exe := filepath.Join(env.UserDir, "secrets-manager")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\necho secrets-manager\n"), 0755); err != nil {
		t.Fatalf("Failed to write fake executable: %v", err)
	}
	cmd.SetExecutablePath(func() (string, error) { return exe, nil })

	return env
}

// WriteConfig writes content as the user config file.
func (e *Env) WriteConfig(t *testing.T, content string) {
	t.Helper()
	dir := filepath.Join(e.UserDir, "config")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	e.Config = filepath.Join(dir, "secrets-manager.toml")
	if err := os.WriteFile(e.Config, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// WriteSecret writes a secret and its sidecar into the source tree.
func (e *Env) WriteSecret(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.Source, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	if _, err := checksum.EnsureSidecar(e.Source, rel); err != nil {
		t.Fatalf("Failed to write sidecar for %s: %v", rel, err)
	}
}

// WriteTestSecrets writes every secret declared in TestConfig.
func (e *Env) WriteTestSecrets(t *testing.T) {
	t.Helper()
	e.WriteSecret(t, "db.key", "k1")
	e.WriteSecret(t, "ssh/id_ed25519", "private key\n")
	e.WriteSecret(t, "api.token", "token")
	e.WriteSecret(t, "ca.pem", "ca")
}

// StorePassphrase stores the passphrase for profile in the mocked keyring.
func StorePassphrase(t *testing.T, profile, passphrase string) {
	t.Helper()
	if err := keyring.Set(utils.KeyringService, profile, passphrase); err != nil {
		t.Fatalf("Failed to store passphrase: %v", err)
	}
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// CreateTestCLI returns the root command set up to run args.
func CreateTestCLI(args []string, verboseFlag, debugFlag bool) *cobra.Command {
	cmd.ResetGlobalState()
	cmd.SetVerbose(verboseFlag)
	cmd.SetDebug(debugFlag)

	// Initialize the logger with the test flags
	cmd.SetLogger(logger.Logger{
		Verbose: verboseFlag,
		Debug:   debugFlag,
	})

	rootCmd := cmd.GetRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd
}

// Run executes the CLI with args and returns its combined output.
func Run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return CaptureOutput(func() error {
		return CreateTestCLI(args, false, false).Execute()
	})
}
