package utils

import (
	"os"
	"os/user"
	"path/filepath"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// DefaultProfile returns the profile used when none is given: the hostname,
// or the username when the hostname is unavailable.
func DefaultProfile() (string, error) {
	hostname, err := GetHostname()
	if err == nil && hostname != "" {
		return hostname, nil
	}
	return GetUsername()
}

// Executable returns the resolved path of the running binary.
func Executable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(path)
}
