package configs

import (
	"errors"
	"path/filepath"
	"strings"
)

// Placeholders substituted in symlink templates.
const (
	PathPlaceholder    = "$path"
	ProfilePlaceholder = "$profile"
)

var (
	errTemplateNotAbsolute = errors.New("template must be an absolute path")
	errTemplateWithoutPath = errors.New("template must contain " + PathPlaceholder)
)

// Config is a validated configuration. It is immutable; accessors return copies.
type Config struct {
	path     string
	source   []byte
	secrets  map[string][]string
	imports  map[string][]string
	symlinks map[string]string
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// FileName returns the base name to use when the config is exported.
func (c *Config) FileName() string {
	if c.path == "" {
		return DefaultFileName + ".toml"
	}
	return filepath.Base(c.path)
}

// Source returns the config file's original text.
func (c *Config) Source() []byte {
	return append([]byte(nil), c.source...)
}

// Profiles returns the names of all profiles owning secrets, sorted.
func (c *Config) Profiles() []string {
	return sortedKeys(c.secrets)
}

// Secrets returns the paths owned by profile, in declaration order.
func (c *Config) Secrets(profile string) []string {
	return append([]string(nil), c.secrets[profile]...)
}

// AdditionalImports returns the paths profile imports from other owners.
func (c *Config) AdditionalImports(profile string) []string {
	return append([]string(nil), c.imports[profile]...)
}

// ExportPaths returns what an export run for profile covers: its own secrets,
// then the shared profile's secrets.
func (c *Config) ExportPaths(profile string) []string {
	paths := c.Secrets(profile)
	if profile != SharedProfile {
		paths = append(paths, c.secrets[SharedProfile]...)
	}
	return paths
}

// ImportPaths returns what an import run for profile covers: its own
// secrets, then its additional imports.
func (c *Config) ImportPaths(profile string) []string {
	return append(c.Secrets(profile), c.imports[profile]...)
}

// Owner returns the profile owning secret.
func (c *Config) Owner(secret string) (string, bool) {
	for _, profile := range c.Profiles() {
		if contains(c.secrets[profile], secret) {
			return profile, true
		}
	}
	return "", false
}

// SymlinkDestination expands profile's symlink template for secret. It
// reports false when the profile has no template.
func (c *Config) SymlinkDestination(profile, secret string) (string, bool) {
	template, ok := c.symlinks[profile]
	if !ok {
		return "", false
	}
	r := strings.NewReplacer(PathPlaceholder, secret, ProfilePlaceholder, profile)
	return filepath.FromSlash(r.Replace(template)), true
}
