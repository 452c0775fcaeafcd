package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrPassphraseMismatch is returned when the confirmation differs from the passphrase.
var ErrPassphraseMismatch = errors.New("passphrases do not match")

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// ReadConfirmedPassphrase prompts twice and fails unless both entries match.
func ReadConfirmedPassphrase(prompt, confirm string) ([]byte, error) {
	passphrase, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, err
	}

	again, err := ReadPassphrase(confirm)
	if err != nil {
		wipe(passphrase)
		return nil, err
	}
	defer wipe(again)

	if !bytes.Equal(passphrase, again) {
		wipe(passphrase)
		return nil, ErrPassphraseMismatch
	}
	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
