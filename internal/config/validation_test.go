package config

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
		wantIs    error
	}{
		{"defaults are valid", func(*Config) {}, "", nil},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url", ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, "api.base_url", ErrInvalidBaseURL},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout", ErrInvalidConfig},
		{"poll too fast", func(c *Config) { c.Poll.Interval = time.Second }, "poll.interval", ErrInvalidConfig},
		{"poll disabled keeps the floor", func(c *Config) { c.Poll.Enabled = false; c.Poll.Interval = time.Second }, "poll.interval", ErrInvalidConfig},
		{"poll disabled with valid interval", func(c *Config) { c.Poll.Enabled = false }, "", nil},
		{"bad log level", func(c *Config) { c.System.LogLevel = "loud" }, "system.log_level", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var verrs *ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error = %v, want *ValidationErrors", err)
			}
			if verrs.Errors[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verrs.Errors[0].Field, tt.wantField)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(err, %v) = false", tt.wantIs)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	e := &ValidationErrors{Errors: []ValidationError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse", Value: 3}}}
	want := `validation failed with 2 error(s): validation error: field "a": bad; validation error: field "b": worse (got: 3)`
	if e.Error() != want {
		t.Errorf("Error() = %q", e.Error())
	}
}
