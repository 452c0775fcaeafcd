package configs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	kerrors "github.com/PolarWolf314/secrets-manager/internal/errors"
	"gopkg.in/yaml.v3"
)

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatTOML
	}
}

// Locate returns the config file to use. An explicit path wins; otherwise the
// first existing candidate from settings is returned.
func Locate(explicit string, settings *UserSettings, workDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	for _, candidate := range settings.Candidates(workDir) {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", &kerrors.ConfigError{Kind: kerrors.MissingConfig}
}

// Load reads, schema-checks and validates the config file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.UnreadableConfig, Path: path, Err: err}
	}

	cfg, err := Parse(content, formatOf(path) == formatYAML)
	if err != nil {
		var cerr *kerrors.ConfigError
		if errors.As(err, &cerr) && cerr.Path == "" {
			cerr.Path = path
		}
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates config text. TOML is assumed unless isYAML is
// set. The text is kept so it can be exported verbatim.
func Parse(content []byte, isYAML bool) (*Config, error) {
	doc := map[string]any{}
	var raw RawConfig

	if isYAML {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.UnparsableConfig, Err: err}
		}
		if doc == nil {
			doc = map[string]any{}
		}
		if err := checkSchema(doc); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.InvalidSchema, Err: err}
		}
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.UnparsableConfig, Err: err}
		}
	} else {
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&doc); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.UnparsableConfig, Err: err}
		}
		if err := checkSchema(doc); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.InvalidSchema, Err: err}
		}
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&raw); err != nil {
			return nil, &kerrors.ConfigError{Kind: kerrors.UnparsableConfig, Err: err}
		}
	}

	cfg, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	cfg.source = append([]byte(nil), content...)
	return cfg, nil
}
