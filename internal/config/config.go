// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config represents the application configuration. Every key is
// optional; a missing config file leaves the defaults in place.
type Config struct {
	// LogLevel overrides the LOG_LEVEL environment variable
	LogLevel string `mapstructure:"log_level"`

	// DRM settings for the TTY backend
	Drm DrmConfig `mapstructure:"drm"`

	// Wayland backend settings
	Wayland WaylandConfig `mapstructure:"wayland"`
}

// DrmConfig contains TTY backend settings
type DrmConfig struct {
	// Card overrides DRM device discovery with a fixed device path,
	// e.g. /dev/dri/card1
	Card string `mapstructure:"card"`
}

// WaylandConfig contains Wayland backend settings
type WaylandConfig struct {
	// Display overrides WAYLAND_DISPLAY; a socket name or absolute path
	Display string `mapstructure:"display"`
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system. A missing config file is
// not an error; a malformed one is.
func Init() error {
	viper.SetConfigName("dpms")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "dpms"))
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	c := DefaultConfig
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	cfg = &c
	return nil
}

// Get returns the loaded configuration, initializing defaults if Init
// has not run.
func Get() *Config {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	return cfg
}
