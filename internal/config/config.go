// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for seshat-tui.
type Config struct {
	Binary   string `mapstructure:"binary" yaml:"binary"`       // seshat executable path or name
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`   // history/event log storage
	LogLevel string `mapstructure:"log_level" yaml:"log_level"` // debug, info, warn, error
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`   // empty disables file logging
	LingerMs int    `mapstructure:"linger_ms" yaml:"linger_ms"` // display linger before session reset
	Headless bool   `mapstructure:"headless" yaml:"headless"`   // plain line output, no TUI
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("seshat")

	v.SetDefault("binary", "seshat")
	v.SetDefault("data_dir", ".seshat")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("linger_ms", 1800)
	v.SetDefault("headless", false)

	v.SetEnvPrefix("SESHAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int parsing
	bindings := map[string]string{
		"binary":    "SESHAT_BINARY",
		"data_dir":  "SESHAT_DATA_DIR",
		"log_level": "SESHAT_LOG_LEVEL",
		"log_file":  "SESHAT_LOG_FILE",
		"linger_ms": "SESHAT_LINGER_MS",
		"headless":  "SESHAT_HEADLESS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/seshat/seshat.yml or $XDG_CONFIG_HOME/seshat/seshat.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "seshat", "seshat.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "seshat", "seshat.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./seshat.yml in the current working directory.
func ProjectPath() string {
	return "seshat.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ProjectPath(), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
