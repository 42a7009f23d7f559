package model

// maxRecentMeshes bounds AppConfig.RecentMeshes.
const maxRecentMeshes = 10

// AppConfig holds application-wide preferences and the settings new runs start from.
type AppConfig struct {
	Defaults Settings `json:"defaults"`

	OutputDir    string   `json:"output_dir"`    // empty = next to the mesh
	RecentMeshes []string `json:"recent_meshes"` // most recent first
	Theme        string   `json:"theme"`         // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig built on DefaultSettings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Defaults:     DefaultSettings(),
		RecentMeshes: []string{},
		Theme:        "system",
	}
}

// ApplyToSettings copies the saved defaults into s, keeping any profile
// already chosen when the defaults name none.
func (c AppConfig) ApplyToSettings(s *Settings) {
	profile := s.GCodeProfile
	*s = c.Defaults
	if s.GCodeProfile == "" {
		s.GCodeProfile = profile
	}
}

// AddRecentMesh moves path to the front of the recent list.
func (c *AppConfig) AddRecentMesh(path string) {
	recent := []string{path}
	for _, p := range c.RecentMeshes {
		if p != path && len(recent) < maxRecentMeshes {
			recent = append(recent, p)
		}
	}
	c.RecentMeshes = recent
}
