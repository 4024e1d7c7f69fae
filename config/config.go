// Package config loads the optional hiloz.yaml configuration file consulted
// before CLI flags are parsed: default max simulation time, a trace
// database DSN, and the VCD timescale label. Flags always override values
// loaded here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the top-level keys of hiloz.yaml. Every field is optional;
// the zero value means "not set, fall back to the CLI default."
type Config struct {
	MaxTime   uint64 `yaml:"max_time"`
	TraceDSN  string `yaml:"trace_dsn"`
	Timescale string `yaml:"timescale"`
}

// Load reads and parses path. A missing file is not an error: it returns
// the zero Config, so a project with no config file runs on defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// MergeMaxTime returns flagValue if it was explicitly set (non-zero), else
// the config's MaxTime, else fall back.
func (c Config) MergeMaxTime(flagValue, fallback uint64) uint64 {
	if flagValue != 0 {
		return flagValue
	}
	if c.MaxTime != 0 {
		return c.MaxTime
	}
	return fallback
}

// MergeString returns flagValue if non-empty, else the config value.
func MergeString(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
