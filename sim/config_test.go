package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 240.0, cfg.RoadWidth())
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.GameWidth = 0 }},
		{"negative height", func(c *Config) { c.GameHeight = -1 }},
		{"no lanes", func(c *Config) { c.NumLanes = 0 }},
		{"zero lane width", func(c *Config) { c.LaneWidth = 0 }},
		{"zero car width", func(c *Config) { c.CarWidth = 0 }},
		{"zero car height", func(c *Config) { c.CarHeight = 0 }},
		{"negative activation", func(c *Config) { c.ActivationDistance = -5 }},
		{"road wider than game", func(c *Config) { c.NumLanes = 7 }},
		{"car as wide as road", func(c *Config) { c.NumLanes = 1; c.CarWidth = 80 }},
		{"NaN width", func(c *Config) { c.GameWidth = math.NaN() }},
		{"NaN height", func(c *Config) { c.GameHeight = math.NaN() }},
		{"NaN lane width", func(c *Config) { c.LaneWidth = math.NaN() }},
		{"NaN car width", func(c *Config) { c.CarWidth = math.NaN() }},
		{"NaN car height", func(c *Config) { c.CarHeight = math.NaN() }},
		{"NaN activation", func(c *Config) { c.ActivationDistance = math.NaN() }},
		{"infinite width", func(c *Config) { c.GameWidth = math.Inf(1) }},
		{"infinite height", func(c *Config) { c.GameHeight = math.Inf(1) }},
		{"infinite car height", func(c *Config) { c.CarHeight = math.Inf(1) }},
		{"infinite activation", func(c *Config) { c.ActivationDistance = math.Inf(1) }},
		{"negative infinite lane width", func(c *Config) { c.LaneWidth = math.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	// GIVEN a file that overrides two fields
	path := writeConfig(t, "num_lanes: 2\nseed: 7\n")

	// WHEN loaded
	cfg, err := LoadConfig(path)

	// THEN the overrides apply and the rest stay at defaults
	require.NoError(t, err)
	want := DefaultConfig()
	want.NumLanes = 2
	want.Seed = 7
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_EmptyFileIsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_UnknownFieldRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "num_lane: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_lane")
}

func TestLoadConfig_InvalidValuesRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "lane_width: -80\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_NaNRejected(t *testing.T) {
	// GIVEN a file whose car height is YAML's .nan
	path := writeConfig(t, "car_height: .nan\n")

	// WHEN loaded
	_, err := LoadConfig(path)

	// THEN it fails validation instead of producing rectangles that never intersect
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_RejectsNaNCarHeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CarHeight = math.NaN()
	env, err := New(cfg)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
