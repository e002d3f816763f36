// Package config provides centralized configuration for verseek.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application-wide configuration.
type Config struct {
	// MarkerRef is the symbolic ref that records the pre-seek branch.
	MarkerRef string `yaml:"marker_ref"`

	// AutoversionBin is the binary used to map commits to versions in
	// single-package trees.
	AutoversionBin string `yaml:"autoversion_bin"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the default configuration, reading the optional
// config file and environment variables. Precedence: env over file over
// defaults.
func DefaultConfig() *Config {
	c := &Config{
		MarkerRef:      "VERSEEK_HEAD",
		AutoversionBin: "autoversion",
	}

	file := os.Getenv("VERSEEK_CONFIG")
	if file == "" {
		file = ".verseek.yml"
	}
	if data, err := os.ReadFile(file); err == nil {
		_ = yaml.Unmarshal(data, c)
	}

	if v := os.Getenv("VERSEEK_MARKER_REF"); v != "" {
		c.MarkerRef = v
	}
	if v := os.Getenv("VERSEEK_AUTOVERSION"); v != "" {
		c.AutoversionBin = v
	}
	if os.Getenv("VERSEEK_DEBUG") != "" {
		c.Debug = true
	}
	return c
}

// Global is the application-wide configuration instance.
var Global = DefaultConfig()
