package config

import (
	"fmt"
	"os"

	"hotel_concierge/src"

	"gopkg.in/yaml.v3"
)

// Load reads the environment configuration and overlays the YAML file at
// path, when one is given.
func Load(path string) (*src.Config, error) {
	cfg, err := src.LoadConfig()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	if err := Overlay(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay decodes the YAML file at path onto cfg. Keys missing from the
// file keep their current value.
func Overlay(cfg *src.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing YAML: %w", err)
	}
	return nil
}
