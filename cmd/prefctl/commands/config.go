package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds prefctl defaults, overridable per-invocation by flags.
type Config struct {
	Store   string `yaml:"store"`
	Timeout string `yaml:"timeout"` // time.ParseDuration syntax, empty means unbounded
	Verbose bool   `yaml:"verbose"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() *Config {
	return &Config{Store: "default"}
}

// loadConfig reads config.yaml from the store directory. A missing file
// yields the defaults.
func loadConfig(dir string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config.yaml: %w", err)
	}
	return cfg, nil
}

// timeoutValue parses the configured timeout, treating empty as zero.
func (c *Config) timeoutValue() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parse timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
