package config

import (
	"slices"
	"time"
)

// Config is the root configuration aggregate containing all sections.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Poll   PollConfig   `yaml:"poll"`
	System SystemConfig `yaml:"system"`
}

// APIConfig describes how to reach the marketplace REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PollConfig controls the background unread/pending count poll.
type PollConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// SystemConfig represents the system configuration section.
type SystemConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFile        string `yaml:"log_file"`
	NoColor        bool   `yaml:"no_color"`
	NonInteractive bool   `yaml:"non_interactive"`
}

// sectionNames lists all valid configuration section names.
var sectionNames = []string{"api", "poll", "system"}

// IsValidSectionName checks if the given name is a valid section name.
func IsValidSectionName(name string) bool {
	return slices.Contains(sectionNames, name)
}

// ValidSectionNames returns all valid section names.
func ValidSectionNames() []string {
	result := make([]string, len(sectionNames))
	copy(result, sectionNames)
	return result
}

// YAML file wrapper types for proper unmarshaling with top-level keys.
// Each section file wraps its content under a top-level key.

type apiFileWrapper struct {
	API APIConfig `yaml:"api"`
}

type pollFileWrapper struct {
	Poll PollConfig `yaml:"poll"`
}

type systemFileWrapper struct {
	System SystemConfig `yaml:"system"`
}
