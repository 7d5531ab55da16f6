package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// managerState represents the lifecycle state of the ConfigManager.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
	stateWatching
)

// ConfigManager provides thread-safe configuration management.
// It must be initialized via Load() before use.
//
// It keeps two views: stored is defaults plus section files, and config
// adds the MEETLY_* environment overrides on top. Sections are read and
// written against stored so Save never persists an environment value.
type ConfigManager struct {
	mu        sync.RWMutex
	config    *Config
	stored    *Config
	dir       string
	state     managerState
	loader    *Loader
	callbacks []func(Config)
}

// NewConfigManager creates a new ConfigManager instance in uninitialized state.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		loader: NewLoader(),
		state:  stateUninitialized,
	}
}

// DefaultDir returns the meetly directory: MEETLY_CONFIG_DIR when set,
// otherwise ~/.meetly.
func DefaultDir() (string, error) {
	if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		return filepath.Clean(envDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads configuration from dir (DefaultDir when empty). It merges file
// values with compiled defaults and applies environment variable overrides.
// The configuration is validated before being stored.
func (m *ConfigManager) Load(dir string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	stored, cfg, err := m.read(dir)
	if err != nil {
		return nil, err
	}

	m.stored = stored
	m.config = cfg
	m.dir = dir
	m.state = stateInitialized

	return cfg, nil
}

// read loads the stored view and derives the effective one. Caller must
// hold Lock.
func (m *ConfigManager) read(dir string) (stored, cfg *Config, err error) {
	stored, err = m.loader.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err = effective(stored)
	if err != nil {
		return nil, nil, err
	}
	return stored, cfg, nil
}

// effective applies the environment overrides to a copy of stored and
// validates the result.
func effective(stored *Config) (*Config, error) {
	cfg := *stored
	errs := applyEnvOverrides(&cfg)
	if err := Validate(&cfg); err != nil {
		if verrs, ok := err.(*ValidationErrors); ok {
			errs = append(errs, verrs.Errors...)
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}
	return &cfg, nil
}

// Get returns the current in-memory configuration.
// Returns nil if the manager has not been initialized via Load().
func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Dir returns the directory the configuration was loaded from.
func (m *ConfigManager) Dir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dir
}

// GetSection returns the stored value of a named section, without
// environment overrides.
// Returns ErrNotInitialized if Load() has not been called.
// Returns ErrSectionNotFound if the section name is invalid.
func (m *ConfigManager) GetSection(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return nil, ErrNotInitialized
	}

	switch name {
	case "api":
		return m.stored.API, nil
	case "poll":
		return m.stored.Poll, nil
	case "system":
		return m.stored.System, nil
	default:
		return nil, ErrSectionNotFound
	}
}

// SetSection updates a named configuration section in memory. The change
// is applied only if both views still validate.
// Returns ErrNotInitialized if Load() has not been called.
// Returns ErrSectionNotFound if the section name is invalid.
// Returns ErrSectionTypeMismatch if the value type does not match.
func (m *ConfigManager) SetSection(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	next := *m.stored
	switch name {
	case "api":
		v, ok := value.(APIConfig)
		if !ok {
			return fmt.Errorf("%w: expected APIConfig for section %q", ErrSectionTypeMismatch, name)
		}
		next.API = v
	case "poll":
		v, ok := value.(PollConfig)
		if !ok {
			return fmt.Errorf("%w: expected PollConfig for section %q", ErrSectionTypeMismatch, name)
		}
		next.Poll = v
	case "system":
		v, ok := value.(SystemConfig)
		if !ok {
			return fmt.Errorf("%w: expected SystemConfig for section %q", ErrSectionTypeMismatch, name)
		}
		next.System = v
	default:
		return ErrSectionNotFound
	}

	if err := Validate(&next); err != nil {
		return err
	}
	cfg, err := effective(&next)
	if err != nil {
		return err
	}
	m.stored = &next
	m.config = cfg
	return nil
}

// LoadedSections reports which sections came from a file on the last
// load. Returns nil if Load() has not been called.
func (m *ConfigManager) LoadedSections() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return nil
	}
	return m.loader.LoadedSections()
}

// Save persists the current configuration to disk atomically.
// Each section is saved to its corresponding YAML file using
// temp file + os.Rename for atomic writes.
func (m *ConfigManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}
	if err := Validate(m.stored); err != nil {
		return err
	}

	sectionsDir := filepath.Join(m.dir, filepath.FromSlash(SectionsSubdir))
	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := saveSection(sectionsDir, "api.yaml", apiFileWrapper{API: m.stored.API}); err != nil {
		return fmt.Errorf("save api config: %w", err)
	}
	if err := saveSection(sectionsDir, "poll.yaml", pollFileWrapper{Poll: m.stored.Poll}); err != nil {
		return fmt.Errorf("save poll config: %w", err)
	}
	if err := saveSection(sectionsDir, "system.yaml", systemFileWrapper{System: m.stored.System}); err != nil {
		return fmt.Errorf("save system config: %w", err)
	}

	return nil
}

// Reload forces a re-read from disk, replacing the in-memory configuration.
// Returns ErrNotInitialized if Load() has not been called.
func (m *ConfigManager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	stored, cfg, err := m.read(m.dir)
	if err != nil {
		return err
	}
	m.stored = stored
	m.config = cfg

	for _, cb := range m.callbacks {
		cb(*m.config)
	}
	return nil
}

// Watch registers a callback to be invoked when configuration is reloaded.
// Returns ErrNotInitialized if Load() has not been called.
func (m *ConfigManager) Watch(callback func(Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	m.callbacks = append(m.callbacks, callback)
	m.state = stateWatching
	return nil
}

// saveSection marshals data to YAML and writes it atomically.
func saveSection(dir, filename string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}
	return AtomicWrite(filepath.Join(dir, filename), yamlData, 0o644)
}

// AtomicWrite writes data to a file atomically using temp file + os.Rename.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".meetly-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
