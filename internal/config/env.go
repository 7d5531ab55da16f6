package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognised by the client.
const (
	EnvConfigDir      = "MEETLY_CONFIG_DIR"
	EnvAPIURL         = "MEETLY_API_URL"
	EnvAPITimeout     = "MEETLY_API_TIMEOUT"
	EnvPollInterval   = "MEETLY_POLL_INTERVAL"
	EnvLogLevel       = "MEETLY_LOG_LEVEL"
	EnvLogFile        = "MEETLY_LOG_FILE"
	EnvNoColor        = "MEETLY_NO_COLOR"
	EnvNonInteractive = "MEETLY_NON_INTERACTIVE"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set keep their value. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
// Values that cannot be parsed are reported as validation errors.
func applyEnvOverrides(cfg *Config) []ValidationError {
	var errs []ValidationError

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPITimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		} else {
			errs = append(errs, envError(EnvAPITimeout, v))
		}
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Poll.Interval = d
		} else {
			errs = append(errs, envError(EnvPollInterval, v))
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.System.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.System.LogFile = v
	}
	if envBool(EnvNoColor) {
		cfg.System.NoColor = true
	}
	if envBool(EnvNonInteractive) {
		cfg.System.NonInteractive = true
	}

	return errs
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func envError(key, value string) ValidationError {
	return ValidationError{
		Field:   key,
		Message: "must be a duration such as 30s or 1m",
		Value:   value,
		Wrapped: ErrInvalidConfig,
	}
}
