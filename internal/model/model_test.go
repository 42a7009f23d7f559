package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Settings Tests ───

func TestDefaultSettingsAreValid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 3.0, s.CornerRadius)
	assert.Equal(t, 15.0, s.StepDown)
	assert.Equal(t, 0.51, s.WeaveResolution)
	assert.Equal(t, 3.0, s.ToolRadius())
}

func TestToolRadiusAddsFlat(t *testing.T) {
	s := DefaultSettings()
	s.FlatRadius = 2
	assert.Equal(t, 5.0, s.ToolRadius())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"zero radius", func(s *Settings) { s.CornerRadius = 0 }},
		{"negative step", func(s *Settings) { s.StepDown = -1 }},
		{"zero resolution", func(s *Settings) { s.WeaveResolution = 0 }},
		{"zero box", func(s *Settings) { s.BoxWidth = 0 }},
		{"negative flat", func(s *Settings) { s.FlatRadius = -0.5 }},
		{"negative stock", func(s *Settings) { s.StockToLeave = -1 }},
		{"negative clearance", func(s *Settings) { s.BoundaryClearance = -2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

// ─── Profile Tests ───

func TestAllProfilesIncludesBuiltInAndCustom(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	builtInCount := len(GCodeProfiles)
	if got := len(AllProfiles()); got != builtInCount {
		t.Errorf("expected %d profiles with no custom, got %d", builtInCount, got)
	}

	CustomProfiles = []GCodeProfile{{Name: "Custom1", Description: "Test custom"}}
	if got := len(AllProfiles()); got != builtInCount+1 {
		t.Errorf("expected %d profiles with 1 custom, got %d", builtInCount+1, got)
	}
}

func TestGetProfileFindsCustom(t *testing.T) {
	CustomProfiles = []GCodeProfile{{Name: "MyCustom", RapidMove: "G0", FeedMove: "G1"}}
	defer func() { CustomProfiles = nil }()

	if p := GetProfile("MyCustom"); p.Name != "MyCustom" {
		t.Errorf("expected MyCustom, got %s", p.Name)
	}
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	if p := GetProfile("NonExistent"); p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}

func TestGetProfileNamesIncludesCustom(t *testing.T) {
	CustomProfiles = []GCodeProfile{{Name: "CustomA"}, {Name: "CustomB"}}
	defer func() { CustomProfiles = nil }()

	names := GetProfileNames()
	assert.Contains(t, names, "Grbl")
	assert.Contains(t, names, "CustomA")
	assert.Contains(t, names, "CustomB")
	assert.Equal(t, "Grbl", names[0])
}

func TestAddCustomProfile(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	require.NoError(t, AddCustomProfile(GCodeProfile{Name: "NewProfile", Description: "New", IsBuiltIn: true}))
	require.Len(t, CustomProfiles, 1)
	assert.False(t, CustomProfiles[0].IsBuiltIn)

	require.NoError(t, AddCustomProfile(GCodeProfile{Name: "NewProfile", Description: "Updated"}))
	require.Len(t, CustomProfiles, 1)
	assert.Equal(t, "Updated", CustomProfiles[0].Description)
}

func TestAddCustomProfileRejects(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	assert.ErrorIs(t, AddCustomProfile(GCodeProfile{}), ErrProfileNameEmpty)
	err := AddCustomProfile(GCodeProfile{Name: "Grbl"})
	if !errors.Is(err, ErrProfileNameBuiltIn) {
		t.Errorf("expected ErrProfileNameBuiltIn, got %v", err)
	}
	assert.Empty(t, CustomProfiles)
}

func TestRemoveCustomProfile(t *testing.T) {
	CustomProfiles = []GCodeProfile{{Name: "A"}, {Name: "B"}}
	defer func() { CustomProfiles = nil }()

	require.NoError(t, RemoveCustomProfile("A"))
	require.Len(t, CustomProfiles, 1)
	assert.Equal(t, "B", CustomProfiles[0].Name)

	assert.ErrorIs(t, RemoveCustomProfile("A"), ErrProfileNotFound)
	assert.ErrorIs(t, RemoveCustomProfile("Generic"), ErrProfileReadOnly)
}

func TestNewCustomProfile(t *testing.T) {
	p := NewCustomProfile("Shop", "Mach3")
	assert.Equal(t, "Shop", p.Name)
	assert.Equal(t, "Based on Mach3", p.Description)
	assert.False(t, p.IsBuiltIn)
	assert.Equal(t, ")", p.CommentSuffix)

	p.StartCode[0] = "G91"
	assert.Equal(t, "G90", GetProfile("Mach3").StartCode[0])
}

func TestBuiltInProfilesMarkedCorrectly(t *testing.T) {
	for _, p := range GCodeProfiles {
		assert.True(t, p.IsBuiltIn, p.Name)
		assert.NotEmpty(t, p.RapidMove, p.Name)
		assert.NotEmpty(t, p.FeedMove, p.Name)
	}
	assert.Equal(t, "Generic", GCodeProfiles[len(GCodeProfiles)-1].Name)
}
