// Package config loads the meetly client settings: YAML section files
// under the config directory, a .env file, then MEETLY_* environment
// overrides. The result is validated and served through a thread-safe
// ConfigManager.
package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig       = errors.New("config: invalid configuration")
	ErrInvalidBaseURL      = errors.New("config: invalid api.base_url")
	ErrInvalidYAML         = errors.New("config: invalid YAML syntax")
	ErrNotInitialized      = errors.New("config: manager not initialized, call Load() first")
	ErrSectionNotFound     = errors.New("config: section not found")
	ErrSectionTypeMismatch = errors.New("config: section type mismatch")
)

// ValidationError is one rejected setting.
type ValidationError struct {
	Field   string
	Message string
	Value   any
	Wrapped error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation error: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: field %q: %s (got: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Wrapped
}

// ValidationErrors collects every rejected setting from one load. It
// matches ErrInvalidConfig and any sentinel wrapped by its entries.
type ValidationErrors struct {
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation: no errors"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Error())
	}
	return fmt.Sprintf("validation failed with %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *ValidationErrors) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	for _, ve := range e.Errors {
		if ve.Wrapped != nil && errors.Is(ve.Wrapped, target) {
			return true
		}
	}
	return false
}
