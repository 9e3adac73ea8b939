package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config groups the construction parameters of an Environment.
// Geometry is fixed for the lifetime of the environment.
type Config struct {
	GameWidth          float64 `yaml:"game_width"`          // width of the play area (must be > 0)
	GameHeight         float64 `yaml:"game_height"`         // height of the play area (must be > 0)
	NumLanes           int     `yaml:"num_lanes"`           // lanes in the corridor (must be >= 1)
	LaneWidth          float64 `yaml:"lane_width"`          // width of one lane (must be > 0)
	CarWidth           float64 `yaml:"car_width"`           // vehicle and actor bounding box width
	CarHeight          float64 `yaml:"car_height"`          // vehicle and actor bounding box height
	ActivationDistance float64 `yaml:"activation_distance"` // distance traveled before traffic starts spawning
	AllowReverse       bool    `yaml:"allow_reverse"`       // lets programmatic control brake below zero
	Seed               int64   `yaml:"seed"`                // master seed for the partitioned RNG
}

// DefaultConfig returns the stock three-lane corridor.
func DefaultConfig() Config {
	return Config{
		GameWidth:          500,
		GameHeight:         600,
		NumLanes:           3,
		LaneWidth:          80,
		CarWidth:           40,
		CarHeight:          80,
		ActivationDistance: 5000,
		AllowReverse:       false,
		Seed:               42,
	}
}

// RoadWidth is the total width of all lanes.
func (c Config) RoadWidth() float64 {
	return float64(c.NumLanes) * c.LaneWidth
}

// Validate checks dimensions and counts. NaN and infinite values are
// rejected. The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !positive(c.GameWidth):
		return fmt.Errorf("%w: game_width must be positive and finite, got %v", ErrInvalidConfig, c.GameWidth)
	case !positive(c.GameHeight):
		return fmt.Errorf("%w: game_height must be positive and finite, got %v", ErrInvalidConfig, c.GameHeight)
	case c.NumLanes < 1:
		return fmt.Errorf("%w: num_lanes must be at least 1, got %d", ErrInvalidConfig, c.NumLanes)
	case !positive(c.LaneWidth):
		return fmt.Errorf("%w: lane_width must be positive and finite, got %v", ErrInvalidConfig, c.LaneWidth)
	case !positive(c.CarWidth) || !positive(c.CarHeight):
		return fmt.Errorf("%w: car size must be positive and finite, got %vx%v", ErrInvalidConfig, c.CarWidth, c.CarHeight)
	case !(c.ActivationDistance >= 0) || math.IsInf(c.ActivationDistance, 1):
		return fmt.Errorf("%w: activation_distance must be non-negative and finite, got %v", ErrInvalidConfig, c.ActivationDistance)
	}
	if c.RoadWidth() > c.GameWidth {
		return fmt.Errorf("%w: road width %v (num_lanes*lane_width) exceeds game_width %v",
			ErrInvalidConfig, c.RoadWidth(), c.GameWidth)
	}
	if c.CarWidth >= c.RoadWidth() {
		return fmt.Errorf("%w: car_width %v leaves no drivable area on a %v wide road",
			ErrInvalidConfig, c.CarWidth, c.RoadWidth())
	}
	return nil
}

// positive reports whether x is finite and above zero. NaN is not.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// LoadConfig reads a YAML environment config. Fields absent from the file
// keep their DefaultConfig values; unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading env config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig with strict field checking
// and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
