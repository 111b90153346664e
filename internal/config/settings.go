// Package config loads persistent CLI defaults from a YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file looked up when --config is not given.
const DefaultPath = ".prefixrun.yml"

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	// Extension overrides merged over the built-in table, key by key.
	Extensions map[string][]string `yaml:"extensions,omitempty"`

	History HistorySettings `yaml:"history,omitempty"`
	Display DisplaySettings `yaml:"display,omitempty"`
}

// HistorySettings controls the run history store.
type HistorySettings struct {
	Path     string `yaml:"path,omitempty"` // default: .prefixrun/history.db
	Disabled bool   `yaml:"disabled,omitempty"`
}

// DisplaySettings controls the run command's terminal output.
type DisplaySettings struct {
	Mode string `yaml:"mode,omitempty"` // auto, plain, live
}

// HistoryPath returns the configured history database path or the default.
func (s *Settings) HistoryPath() string {
	if s.History.Path != "" {
		return s.History.Path
	}
	return filepath.Join(".prefixrun", "history.db")
}

// LoadSettings reads a YAML config file into Settings. If the file does not
// exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}
