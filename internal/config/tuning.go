package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tomz197/containment/internal/game"
	"gopkg.in/yaml.v3"
)

// LoadTuning reads a YAML tuning file and overlays it on game.DefaultConfig.
// An empty path returns the defaults.
func LoadTuning(path string) (game.Config, error) {
	if path == "" {
		return game.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return game.Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := ParseTuning(data)
	if err != nil {
		return game.Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseTuning decodes YAML over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func ParseTuning(data []byte) (game.Config, error) {
	cfg := game.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return game.Config{}, fmt.Errorf("unmarshal tuning: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// MarshalTuning renders a config as YAML, e.g. to seed a tuning file.
func MarshalTuning(cfg game.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
