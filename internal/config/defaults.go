package config

import "time"

// Default value constants to avoid magic numbers and strings.
const (
	DefaultBaseURL      = "http://localhost:5000/api"
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 30 * time.Second
	MinPollInterval     = 5 * time.Second

	DefaultLogLevel = "info"

	// DirName is the per-user directory holding config, session and logs.
	DirName = ".meetly"

	// SectionsSubdir is the path of the section files below DirName.
	SectionsSubdir = "config/sections"
)

// NewDefaultConfig returns a Config with all fields set to compiled defaults.
func NewDefaultConfig() *Config {
	return &Config{
		API:    NewDefaultAPIConfig(),
		Poll:   NewDefaultPollConfig(),
		System: NewDefaultSystemConfig(),
	}
}

// NewDefaultAPIConfig returns an APIConfig with default values.
func NewDefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// NewDefaultPollConfig returns a PollConfig with default values.
func NewDefaultPollConfig() PollConfig {
	return PollConfig{
		Enabled:  true,
		Interval: DefaultPollInterval,
	}
}

// NewDefaultSystemConfig returns a SystemConfig with default values.
func NewDefaultSystemConfig() SystemConfig {
	return SystemConfig{
		LogLevel: DefaultLogLevel,
	}
}
