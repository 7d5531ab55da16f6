package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads configuration from YAML section files.
// It is thread-safe via sync.RWMutex.
type Loader struct {
	mu             sync.RWMutex
	loadedSections map[string]bool
}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all configuration section files below the given meetly
// directory and returns a merged Config with defaults applied for missing
// fields. Missing files use default values. Invalid YAML fails the load.
func (l *Loader) Load(configDir string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loadedSections = make(map[string]bool)
	cfg := NewDefaultConfig()

	sectionsDir := filepath.Join(filepath.Clean(configDir), filepath.FromSlash(SectionsSubdir))
	if _, err := os.Stat(sectionsDir); os.IsNotExist(err) {
		return cfg, nil
	}

	api := &apiFileWrapper{API: cfg.API}
	if err := l.loadSection(sectionsDir, "api.yaml", "api", api); err != nil {
		return nil, err
	}
	cfg.API = api.API

	poll := &pollFileWrapper{Poll: cfg.Poll}
	if err := l.loadSection(sectionsDir, "poll.yaml", "poll", poll); err != nil {
		return nil, err
	}
	cfg.Poll = poll.Poll

	system := &systemFileWrapper{System: cfg.System}
	if err := l.loadSection(sectionsDir, "system.yaml", "system", system); err != nil {
		return nil, err
	}
	cfg.System = system.System

	return cfg, nil
}

// LoadedSections returns a copy of the map indicating which sections
// were successfully loaded from YAML files.
func (l *Loader) LoadedSections() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]bool, len(l.loadedSections))
	maps.Copy(result, l.loadedSections)
	return result
}

// loadSection loads one section file into target and records it as loaded.
func (l *Loader) loadSection(dir, filename, section string, target any) error {
	loaded, err := loadYAMLFile(dir, filename, target)
	if err != nil {
		return fmt.Errorf("load %s section: %w", section, err)
	}
	if loaded {
		l.loadedSections[section] = true
	}
	return nil
}

// loadYAMLFile reads a YAML file from the given directory and unmarshals it
// into the target struct. Returns (true, nil) if the file was found and parsed,
// (false, nil) if the file does not exist, or (false, error) on failure.
func loadYAMLFile(dir, filename string, target any) (bool, error) {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w", filename, ErrInvalidYAML)
	}

	return true, nil
}
