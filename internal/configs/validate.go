package configs

import (
	"path"
	"sort"
	"strings"

	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
)

// SharedProfile owns secrets that every profile exports alongside its own.
const SharedProfile = "shared"

// RawConfig is the configuration as declared, before validation.
type RawConfig struct {
	Secrets           map[string][]string `toml:"secrets" yaml:"secrets"`
	AdditionalImports map[string][]string `toml:"additional_imports" yaml:"additional_imports"`
	Symlinks          map[string]string   `toml:"symlinks" yaml:"symlinks"`
}

// normalizePath returns p with empty components dropped. Absolute paths and
// '.' or '..' components are rejected.
func normalizePath(profile, p string) (string, error) {
	if strings.HasPrefix(p, "/") {
		return "", &kerrors.ConfigError{Kind: kerrors.RootPath, Profile: profile, Path: p}
	}

	var parts []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "":
		case ".":
			return "", &kerrors.ConfigError{Kind: kerrors.CurrentDirPath, Profile: profile, Path: p}
		case "..":
			return "", &kerrors.ConfigError{Kind: kerrors.ParentDirPath, Profile: profile, Path: p}
		default:
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return "", &kerrors.ConfigError{Kind: kerrors.EmptyPath, Profile: profile, Path: p}
	}
	return strings.Join(parts, "/"), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeAll(declared map[string][]string) (map[string][]string, []string, error) {
	profiles := sortedKeys(declared)
	normalized := make(map[string][]string, len(declared))

	for _, profile := range profiles {
		paths := make([]string, 0, len(declared[profile]))
		for _, p := range declared[profile] {
			np, err := normalizePath(profile, p)
			if err != nil {
				return nil, nil, err
			}
			paths = append(paths, np)
		}
		normalized[profile] = paths
	}
	return normalized, profiles, nil
}

func firstDuplicate(paths []string) (string, bool) {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			return p, true
		}
		seen[p] = struct{}{}
	}
	return "", false
}

func contains(paths []string, p string) bool {
	for _, candidate := range paths {
		if candidate == p {
			return true
		}
	}
	return false
}

// Validate proves raw well-formed: paths are normalized, no profile declares
// a secret twice, no secret is owned by two profiles, every additional import
// is owned elsewhere, and symlink templates are usable. Profiles are checked
// in name order so the reported error is deterministic.
func Validate(raw RawConfig) (*Config, error) {
	secrets, profiles, err := normalizeAll(raw.Secrets)
	if err != nil {
		return nil, err
	}

	for _, profile := range profiles {
		if dup, ok := firstDuplicate(secrets[profile]); ok {
			return nil, &kerrors.ConfigError{Kind: kerrors.DuplicateSecret, Profile: profile, Path: dup}
		}
	}

	// Pairwise ownership scan; profile counts are small.
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			for _, secret := range secrets[profiles[i]] {
				if contains(secrets[profiles[j]], secret) {
					return nil, &kerrors.ConfigError{
						Kind:         kerrors.OwnershipConflict,
						Profile:      profiles[i],
						OtherProfile: profiles[j],
						Path:         secret,
					}
				}
			}
		}
	}

	imports, importers, err := normalizeAll(raw.AdditionalImports)
	if err != nil {
		return nil, err
	}

	for _, profile := range importers {
		if dup, ok := firstDuplicate(imports[profile]); ok {
			return nil, &kerrors.ConfigError{Kind: kerrors.DuplicateImport, Profile: profile, Path: dup}
		}

		for _, imp := range imports[profile] {
			if contains(secrets[profile], imp) {
				return nil, &kerrors.ConfigError{Kind: kerrors.DeclaredRedundant, Profile: profile, Path: imp}
			}

			owned := false
			for _, owner := range profiles {
				if contains(secrets[owner], imp) {
					owned = true
					break
				}
			}
			if !owned {
				return nil, &kerrors.ConfigError{Kind: kerrors.DeclaredMissing, Profile: profile, Path: imp}
			}
		}
	}

	symlinks := make(map[string]string, len(raw.Symlinks))
	for _, profile := range sortedKeys(raw.Symlinks) {
		template := raw.Symlinks[profile]
		if err := validateSymlinkTemplate(template); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.InvalidSymlinkTemplate, Profile: profile, Path: template, Err: err}
		}
		symlinks[profile] = template
	}

	return &Config{
		secrets:  secrets,
		imports:  imports,
		symlinks: symlinks,
	}, nil
}

func validateSymlinkTemplate(template string) error {
	if !path.IsAbs(template) {
		return errTemplateNotAbsolute
	}
	if !strings.Contains(template, PathPlaceholder) {
		return errTemplateWithoutPath
	}
	return nil
}
