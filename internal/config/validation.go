package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// validLogLevels lists the accepted system.log_level values.
var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	var errs []ValidationError

	errs = append(errs, validateAPIConfig(&cfg.API)...)
	errs = append(errs, validatePollConfig(&cfg.Poll)...)
	errs = append(errs, validateSystemConfig(&cfg.System)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// validateAPIConfig requires an absolute http(s) base URL and a positive timeout.
func validateAPIConfig(a *APIConfig) []ValidationError {
	var errs []ValidationError

	u, err := url.Parse(a.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "must be an absolute http or https URL (example: https://api.meetly.app/api)",
			Value:   a.BaseURL,
			Wrapped: ErrInvalidBaseURL,
		})
	}

	if a.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout",
			Message: "must be greater than zero",
			Value:   a.Timeout,
			Wrapped: ErrInvalidConfig,
		})
	}

	return errs
}

// validatePollConfig enforces the poll interval floor regardless of
// poll.enabled.
func validatePollConfig(p *PollConfig) []ValidationError {
	if p.Interval >= MinPollInterval {
		return nil
	}
	return []ValidationError{{
		Field:   "poll.interval",
		Message: fmt.Sprintf("must be at least %s", MinPollInterval),
		Value:   p.Interval,
		Wrapped: ErrInvalidConfig,
	}}
}

func validateSystemConfig(s *SystemConfig) []ValidationError {
	if s.LogLevel == "" || slices.Contains(validLogLevels, s.LogLevel) {
		return nil
	}
	return []ValidationError{{
		Field:   "system.log_level",
		Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogLevels, ", ")),
		Value:   s.LogLevel,
		Wrapped: ErrInvalidConfig,
	}}
}
