// Package config loads tool configuration from YAML. The computation
// packages keep taking explicit option values; this package only turns
// a config file into them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tempuskit/libtempus/toon"
	"github.com/tempuskit/libtempus/truth/availability"
	"github.com/tempuskit/libtempus/truth/relative"
)

// Config is the top-level tool configuration.
type Config struct {
	// Timezone is the default IANA zone for expansion and relative
	// expression resolution.
	Timezone string `yaml:"timezone"`

	// WeekStart controls which weekday starts a week in relative
	// expressions. Supported values: "monday" (default), "sunday".
	WeekStart string `yaml:"week_start"`

	// Privacy is the default availability merge mode. Supported
	// values: "opaque" (default), "full".
	Privacy string `yaml:"privacy"`

	// MaxOccurrences caps recurrence expansion when the rule itself
	// is unbounded.
	MaxOccurrences int `yaml:"max_occurrences"`

	// FilterPatterns are dot-path field filters applied before
	// encoding.
	FilterPatterns []string `yaml:"filter_patterns"`

	// FilterPreset names a built-in pattern set appended to
	// FilterPatterns. Supported values: "", "google".
	FilterPreset string `yaml:"filter_preset"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timezone:       "UTC",
		WeekStart:      "monday",
		Privacy:        "opaque",
		MaxOccurrences: 1000,
		FilterPatterns: []string{},
	}
}

// Normalize fills missing values with defaults so partially filled
// configs still behave.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	switch c.Privacy {
	case "opaque", "full":
	default:
		c.Privacy = "opaque"
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = 1000
	}
	if c.FilterPatterns == nil {
		c.FilterPatterns = []string{}
	}
}

// WeekStartOption maps the configured week start onto the resolver
// option.
func (c *Config) WeekStartOption() relative.WeekStart {
	if c.WeekStart == "sunday" {
		return relative.Sunday
	}
	return relative.Monday
}

// PrivacyOption maps the configured privacy mode onto the merge
// option.
func (c *Config) PrivacyOption() availability.Privacy {
	if c.Privacy == "full" {
		return availability.Full
	}
	return availability.Opaque
}

// Patterns returns the effective filter pattern list, preset included.
func (c *Config) Patterns() ([]string, error) {
	patterns := append([]string(nil), c.FilterPatterns...)
	switch c.FilterPreset {
	case "":
	case "google":
		patterns = append(patterns, toon.GoogleCalendarPatterns()...)
	default:
		return nil, fmt.Errorf("unknown filter preset %q", c.FilterPreset)
	}
	return patterns, nil
}

// Load reads a YAML config. A missing file creates and returns the
// default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()
	if _, err := cfg.Patterns(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path, creating the parent directory when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
