// Package config loads garden simulation settings from YAML, layering an
// optional user file over embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable the command line wiring consumes.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Climate    ClimateConfig    `yaml:"climate"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig controls the headless garden run.
type SimulationConfig struct {
	Start string `yaml:"start"` // RFC 3339 timestamp for the simulated clock
	Days  int    `yaml:"days"`  // default run length for the simulate command
	Seed  int64  `yaml:"seed"`  // seed for the service's deterministic RNG
}

// StartTime parses the configured simulation start.
func (s SimulationConfig) StartTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing simulation.start: %w", err)
	}
	return t.UTC(), nil
}

// ClimateConfig selects the weather generator variant.
type ClimateConfig struct {
	Mode string `yaml:"mode"` // "historical" or "stochastic"
	Seed int64  `yaml:"seed"`
}

// ArchiveConfig controls the season export worker and its blob target.
type ArchiveConfig struct {
	QueueSize int    `yaml:"queue_size"`
	Driver    string `yaml:"driver"`  // blob driver override; empty defers to the environment
	FSRoot    string `yaml:"fs_root"` // root directory for the filesystem driver
}

// LoggingConfig sets the slog level for the command line adapter.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", or "error"
}

// Load reads configuration from a YAML file merged over the embedded
// defaults. An empty path yields the defaults alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the wiring cannot act on.
func (c *Config) Validate() error {
	if _, err := c.Simulation.StartTime(); err != nil {
		return err
	}
	if c.Simulation.Days < 1 {
		return fmt.Errorf("simulation.days must be positive, got %d", c.Simulation.Days)
	}
	switch c.Climate.Mode {
	case "historical", "stochastic":
	default:
		return fmt.Errorf("climate.mode %q is not historical or stochastic", c.Climate.Mode)
	}
	if c.Archive.QueueSize < 1 {
		return fmt.Errorf("archive.queue_size must be positive, got %d", c.Archive.QueueSize)
	}
	switch c.Archive.Driver {
	case "", "fs", "memory", "s3":
	default:
		return fmt.Errorf("archive.driver %q is not one of fs, memory, s3", c.Archive.Driver)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// WriteYAML writes the configuration back out, used to scaffold a user file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
