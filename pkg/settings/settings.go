// Package settings manages persistent user settings for the
// mikro-manager tools.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Munger/mikro-manager/pkg/config"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultRouter is the router to use when -r is not specified
	DefaultRouter string `json:"default_router,omitempty"`

	// ConfigDir overrides the default configuration directory
	ConfigDir string `json:"config_dir,omitempty"`
}

// Keys lists the settable keys for the settings commands.
var Keys = []string{"default_router", "config_dir"}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mikro-manager_settings.json"
	}
	return filepath.Join(home, ".mikro-manager", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigDir returns the configuration directory (with fallback)
func (s *Settings) GetConfigDir() string {
	if s.ConfigDir != "" {
		return s.ConfigDir
	}
	return config.DefaultConfigDir
}

// Get returns the value of a named setting.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "default_router":
		return s.DefaultRouter, nil
	case "config_dir":
		return s.ConfigDir, nil
	default:
		return "", fmt.Errorf("unknown setting '%s'", key)
	}
}

// Set assigns a named setting.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "default_router":
		s.DefaultRouter = value
	case "config_dir":
		s.ConfigDir = value
	default:
		return fmt.Errorf("unknown setting '%s'", key)
	}
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
