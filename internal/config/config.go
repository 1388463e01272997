package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StorageDirEnv overrides the configured storage directory when set.
const StorageDirEnv = "ANALOG_STORAGE_DIR"

// EventGroup defines a group of event kinds with styling
type EventGroup struct {
	// Name is the display name of this group
	Name string `yaml:"name"`

	// Color is the catppuccin color name (e.g., "red", "yellow", "green", "mauve")
	Color string `yaml:"color"`

	// Bold makes the text bold
	Bold bool `yaml:"bold"`

	// Patterns is a list of event kinds that belong to this group (supports wildcards)
	Patterns []string `yaml:"patterns"`

	// Exclude if true, events matching this group are hidden from the event list
	Exclude bool `yaml:"exclude"`
}

// LogConfig controls the application log, not the recorded sessions.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// File is where log lines go; empty disables file logging
	File string `yaml:"file"`
}

// Config holds the application configuration
type Config struct {
	// StorageDir is the directory holding one file per session
	StorageDir string `yaml:"storage_dir"`

	// Theme is the catppuccin flavor to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	// Log configures application logging
	Log LogConfig `yaml:"log"`

	// MetricsAddr, when set, serves prometheus metrics during "analog run"
	MetricsAddr string `yaml:"metrics_addr"`

	// EventGroups defines styling groups for event kinds (checked in order, first match wins)
	EventGroups []EventGroup `yaml:"event_groups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		StorageDir: DefaultStorageDir(),
		Theme:      "mocha",
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataHome(), "analog", "analog.log"),
		},
		EventGroups: []EventGroup{
			{
				Name:     "error",
				Color:    "red",
				Bold:     true,
				Patterns: []string{"error", "error.*", "stderr", "panic"},
			},
			{
				Name:     "warning",
				Color:    "peach",
				Patterns: []string{"warn", "warning", "warn.*"},
			},
			{
				Name:     "lifecycle",
				Color:    "mauve",
				Patterns: []string{"lifecycle", "lifecycle.*", "start", "exit"},
			},
			{
				Name:     "message",
				Color:    "green",
				Patterns: []string{"message", "stdout", "info"},
			},
			{
				Name:     "metadata",
				Color:    "lavender",
				Patterns: []string{"metadata", "metadata.*"},
			},
			{
				Name:     "navigation",
				Color:    "overlay0",
				Patterns: []string{"browse.*"},
			},
			{
				Name:     "unmatched",
				Color:    "overlay1",
				Patterns: []string{"*"},
			},
		},
	}
}

// DefaultStorageDir returns the per-user sessions directory:
// $XDG_DATA_HOME/analog/sessions, falling back to ~/.local/share.
func DefaultStorageDir() string {
	return filepath.Join(dataHome(), "analog", "sessions")
}

func dataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

// Load reads the config from a YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //nolint:gosec // config path from known locations
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDefaultPath attempts to load config from standard locations
func LoadFromDefaultPath() (*Config, error) {
	// Check in order: current dir, ~/.config/analog/, XDG_CONFIG_HOME
	paths := []string{
		"analog.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "analog", "config.yaml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "analog", "config.yaml"))
	}

	for _, path := range paths {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil { //nolint:gosec // config path from known locations
			return Load(cleanPath)
		}
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies environment overrides on top of file values.
func (c *Config) applyEnv() {
	if dir := os.Getenv(StorageDirEnv); dir != "" {
		c.StorageDir = dir
	}
}

// GetEventGroup returns the first matching event group for a kind, or nil
func (c *Config) GetEventGroup(kind string) *EventGroup {
	for i := range c.EventGroups {
		group := &c.EventGroups[i]
		if group.Matches(kind) {
			return group
		}
	}
	return nil
}

// Matches returns true if the kind matches this group
func (g *EventGroup) Matches(kind string) bool {
	for _, p := range g.Patterns {
		if matchPattern(p, kind) {
			return true
		}
	}
	return false
}

// ShouldExclude returns true if the kind should be hidden from the event list
func (c *Config) ShouldExclude(kind string) bool {
	group := c.GetEventGroup(kind)
	return group != nil && group.Exclude
}

// matchPattern checks if a pattern matches (supports * wildcards)
func matchPattern(pattern, value string) bool {
	// Exact match
	if pattern == value {
		return true
	}

	// Wildcard match - supports single * anywhere in pattern
	// e.g., "error.*" matches "error.io" and "error.decode"
	if strings.Contains(pattern, "*") {
		parts := strings.SplitN(pattern, "*", 2)
		if len(parts) == 2 {
			prefix := parts[0]
			suffix := parts[1]
			return len(value) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix)
		}
	}

	return false
}
