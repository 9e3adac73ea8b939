package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/traffic-sim/sim"
)

// EnvDefaults represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type EnvDefaults struct {
	Version string               `yaml:"version"`
	Presets map[string]yaml.Node `yaml:"presets"`
}

// loadEnvDefaults parses defaults.yaml with strict field checking.
func loadEnvDefaults(path string) (EnvDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EnvDefaults{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var d EnvDefaults
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return EnvDefaults{}, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	return d, nil
}

// PresetNames lists the presets in sorted order.
func (d EnvDefaults) PresetNames() []string {
	names := make([]string, 0, len(d.Presets))
	for name := range d.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset resolves a named preset on top of sim.DefaultConfig. Fields the
// preset omits keep their defaults; misspelled fields are rejected.
func (d EnvDefaults) Preset(name string) (sim.Config, error) {
	node, ok := d.Presets[name]
	if !ok {
		return sim.Config{}, fmt.Errorf("unknown preset %q; available: %v", name, d.PresetNames())
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return sim.Config{}, fmt.Errorf("re-encoding preset %q: %w", name, err)
	}
	cfg, err := sim.ParseConfig(data)
	if err != nil {
		return sim.Config{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return cfg, nil
}
