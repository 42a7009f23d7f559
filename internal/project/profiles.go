package project

import (
	"errors"
	"path/filepath"

	"github.com/piwi3910/SlabRough/internal/model"
)

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	profiles := []model.GCodeProfile{}
	if _, err := readJSON(path, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// InstallCustomProfiles loads the profiles at path into model.CustomProfiles.
// Entries that clash with a built-in name are skipped and reported.
func InstallCustomProfiles(path string) error {
	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range profiles {
		if err := model.AddCustomProfile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.GCodeProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.GCodeProfile, error) {
	var profile model.GCodeProfile
	found, err := readJSON(path, &profile)
	if err != nil {
		return model.GCodeProfile{}, err
	}
	if !found {
		return model.GCodeProfile{}, errors.New("profile file not found: " + path)
	}
	if profile.Name == "" {
		return model.GCodeProfile{}, errors.New("imported profile has no name")
	}
	profile.IsBuiltIn = false
	return profile, nil
}
