package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/SlabRough/internal/model"
)

// DefaultConfigDir returns ~/.slabrough, or ./.slabrough without a home directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".slabrough")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// writeJSON writes v indented to path, creating parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON decodes path into v. It reports false with no error when the
// file does not exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if _, err := readJSON(path, &config); err != nil {
		return model.AppConfig{}, err
	}
	if config.RecentMeshes == nil {
		config.RecentMeshes = []string{}
	}
	return config, nil
}

// SaveSettings writes the settings of one run, for reuse with -settings.
func SaveSettings(path string, s model.Settings) error {
	return writeJSON(path, s)
}

// LoadSettings reads settings written by SaveSettings. Fields missing from
// the file keep their DefaultSettings values, and a missing file is an error.
func LoadSettings(path string) (model.Settings, error) {
	s := model.DefaultSettings()
	found, err := readJSON(path, &s)
	if err != nil {
		return model.Settings{}, err
	}
	if !found {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", os.ErrNotExist)
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}
	return s, nil
}
