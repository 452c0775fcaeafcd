package utils

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which passphrases are stored.
const KeyringService = "secrets-manager"

// ErrNoKeyringEntry is returned when the keyring holds no passphrase for a profile.
var ErrNoKeyringEntry = errors.New("no passphrase stored in the keyring")

// KeyringPassphrase returns the passphrase stored in the OS keyring for profile.
func KeyringPassphrase(profile string) ([]byte, error) {
	secret, err := keyring.Get(KeyringService, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w for profile '%s' (service '%s')", ErrNoKeyringEntry, profile, KeyringService)
		}
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	if secret == "" {
		return nil, fmt.Errorf("%w for profile '%s' (service '%s')", ErrNoKeyringEntry, profile, KeyringService)
	}
	return []byte(secret), nil
}
