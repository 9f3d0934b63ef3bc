// Package config loads persistent CLI defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for settings unless --config is given.
const DefaultPath = ".taskdeps.yml"

// Store backend names accepted in settings and on the command line.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Settings holds persistent CLI defaults loaded from a config file. Flags
// given explicitly on the command line win over these.
type Settings struct {
	TasksFile string `yaml:"tasks_file"`
	Store     string `yaml:"store"`
	DBPath    string `yaml:"db_path"`
	NoColor   bool   `yaml:"no_color"`

	// Watch mode tuning. Debounce coalesces editor write bursts; the
	// interval drives the poll fallback when fsnotify cannot watch the
	// directory.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &s, nil
}

// Validate rejects settings no command could honor.
func (s *Settings) Validate() error {
	switch s.Store {
	case "", StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", s.Store, StoreJSON, StoreSQLite)
	}
	if s.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	if s.WatchInterval < 0 {
		return fmt.Errorf("watch_interval must not be negative")
	}
	return nil
}
