// Package config loads optional gfapath2fa settings from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds settings that may also be given as flags.
// Flags set on the command line take precedence.
type Config struct {
	Width      int    `json:"width"`
	Strict     bool   `json:"strict"`
	Workers    int    `json:"workers"`
	LogLevel   string `json:"log_level"`
	MaxPaths   int    `json:"max_paths"`
	PathFilter string `json:"path_filter"`
}

// Load reads a JSON config from path. An empty path returns defaults.
// Unknown keys are rejected so typos surface instead of being ignored.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if c.Width < 0 {
		return nil, fmt.Errorf("%s: width must be >= 0, got %d", path, c.Width)
	}
	return &c, nil
}
