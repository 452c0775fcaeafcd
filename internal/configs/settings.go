package configs

import (
	"os"
	"path/filepath"
)

// AppName names the per-user config and state directories.
const AppName = "secrets-manager"

// DefaultFileName is the config file name without extension.
const DefaultFileName = "secrets-manager"

// Extensions lists the config file extensions tried during discovery, in order.
var Extensions = []string{".toml", ".yaml", ".yml"}

type UserSettings struct {
	ConfigDir string
	StateDir  string
}

var UserManagerSettings *UserSettings

func init() {
	UserManagerSettings = DefaultUserSettings()
}

// DefaultUserSettings resolves the per-user directories from the XDG
// environment. Unresolvable directories are left empty and skipped later.
func DefaultUserSettings() *UserSettings {
	settings := &UserSettings{}

	if configDir, err := os.UserConfigDir(); err == nil {
		settings.ConfigDir = filepath.Join(configDir, AppName)
	}

	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			stateDir = filepath.Join(homeDir, ".local", "state")
		}
	}
	if stateDir != "" {
		settings.StateDir = filepath.Join(stateDir, AppName)
	}

	return settings
}

// Candidates returns the config file locations tried during discovery: the
// user config directory first, then the working directory.
func (s *UserSettings) Candidates(workDir string) []string {
	var dirs []string
	if s.ConfigDir != "" {
		dirs = append(dirs, s.ConfigDir)
	}
	dirs = append(dirs, workDir)

	candidates := make([]string, 0, len(dirs)*len(Extensions))
	for _, dir := range dirs {
		for _, ext := range Extensions {
			candidates = append(candidates, filepath.Join(dir, DefaultFileName+ext))
		}
	}
	return candidates
}
