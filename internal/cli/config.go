package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetly-app/meetly/internal/config"
)

// ErrUnknownConfigKey is returned for a key outside the known sections.
var ErrUnknownConfigKey = errors.New("unknown config key")

// configKeys lists the settable keys of each section, in display order.
var configKeys = map[string][]string{
	"api":    {"base_url", "timeout"},
	"poll":   {"enabled", "interval"},
	"system": {"log_level", "log_file", "no_color", "non_interactive"},
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persisted settings",
		Long: `Settings live in YAML files under <config-dir>/config/sections.
MEETLY_* environment variables override them for a single run and are
never written back.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d := GetDeps()
				cfg := d.Config.Get()
				loaded := d.Config.LoadedSections()
				for _, section := range config.ValidSectionNames() {
					source := "defaults"
					if loaded[section] {
						source = section + ".yaml"
					}
					lines := []string{d.Renderer.KV("source", source)}
					for _, key := range configKeys[section] {
						lines = append(lines, d.Renderer.KV(key, configValue(cfg, section, key)))
					}
					printLine(cmd, d.Renderer.Card(section, strings.Join(lines, "\n")))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <section.key> <value>",
			Short: "Persist one setting",
			Example: `  meetly config set api.base_url https://meetly.example.com/api
  meetly config set poll.interval 10s
  meetly config set system.log_level debug`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := GetDeps()
				section, key, err := splitConfigKey(args[0])
				if err != nil {
					return fail(cmd, "Setting not saved", err)
				}
				current, err := d.Config.GetSection(section)
				if err != nil {
					return fail(cmd, "Setting not saved", err)
				}
				updated, err := setConfigField(current, key, args[1])
				if err != nil {
					return fail(cmd, "Setting not saved", err)
				}
				if err := d.Config.SetSection(section, updated); err != nil {
					return fail(cmd, "Setting not saved", err)
				}
				if err := d.Config.Save(); err != nil {
					return fail(cmd, "Setting not saved", err)
				}
				if err := d.Config.Reload(); err != nil {
					return fail(cmd, "Setting saved but could not be reloaded", err)
				}
				printLine(cmd, d.Renderer.SuccessCard("Saved "+args[0],
					d.Renderer.KV(key, configValue(d.Config.Get(), section, key))))
				return nil
			},
		},
	)
	return cmd
}

func splitConfigKey(arg string) (section, key string, err error) {
	section, key, ok := strings.Cut(arg, ".")
	if !config.IsValidSectionName(section) {
		return "", "", fmt.Errorf("%w: section %q (valid: %s)", ErrUnknownConfigKey, section,
			strings.Join(config.ValidSectionNames(), ", "))
	}
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: %q needs a key, e.g. %s.%s", ErrUnknownConfigKey, arg, section, configKeys[section][0])
	}
	return section, key, nil
}

// setConfigField returns section with key set to the parsed raw value.
func setConfigField(section any, key, raw string) (any, error) {
	var err error
	switch s := section.(type) {
	case config.APIConfig:
		switch key {
		case "base_url":
			s.BaseURL = raw
		case "timeout":
			s.Timeout, err = time.ParseDuration(raw)
		default:
			return nil, fmt.Errorf("%w: api.%s", ErrUnknownConfigKey, key)
		}
		return s, parseErr(key, err)
	case config.PollConfig:
		switch key {
		case "enabled":
			s.Enabled, err = strconv.ParseBool(raw)
		case "interval":
			s.Interval, err = time.ParseDuration(raw)
		default:
			return nil, fmt.Errorf("%w: poll.%s", ErrUnknownConfigKey, key)
		}
		return s, parseErr(key, err)
	case config.SystemConfig:
		switch key {
		case "log_level":
			s.LogLevel = strings.ToLower(raw)
		case "log_file":
			s.LogFile = raw
		case "no_color":
			s.NoColor, err = strconv.ParseBool(raw)
		case "non_interactive":
			s.NonInteractive, err = strconv.ParseBool(raw)
		default:
			return nil, fmt.Errorf("%w: system.%s", ErrUnknownConfigKey, key)
		}
		return s, parseErr(key, err)
	}
	return nil, fmt.Errorf("%w: unsupported section %T", config.ErrSectionTypeMismatch, section)
}

func parseErr(key string, err error) error {
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func configValue(cfg *config.Config, section, key string) string {
	if cfg == nil {
		return ""
	}
	switch section + "." + key {
	case "api.base_url":
		return cfg.API.BaseURL
	case "api.timeout":
		return cfg.API.Timeout.String()
	case "poll.enabled":
		return strconv.FormatBool(cfg.Poll.Enabled)
	case "poll.interval":
		return cfg.Poll.Interval.String()
	case "system.log_level":
		return cfg.System.LogLevel
	case "system.log_file":
		return cfg.System.LogFile
	case "system.no_color":
		return strconv.FormatBool(cfg.System.NoColor)
	case "system.non_interactive":
		return strconv.FormatBool(cfg.System.NonInteractive)
	}
	return ""
}
