// Package config loads the Branflu client configuration: a yaml file under
// ~/.branflu, optional .env loading, and BRANFLU_* environment overrides
// on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all client settings.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig points the client at a backend origin.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// AuthConfig holds auth-flow switches.
type AuthConfig struct {
	// DevBypass accepts the fixed development passcode when OTP
	// verification fails. DEV ONLY; never enable against production.
	DevBypass bool `yaml:"dev_bypass"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	DarkMode bool `yaml:"dark_mode"`
}

// LoggingConfig configures the zap logger. The TUI owns the terminal, so
// logs default to a file.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.branflu.com",
			Timeout: "30s",
		},
		Auth: AuthConfig{
			DevBypass: false,
		},
		UI: UIConfig{
			DarkMode: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  defaultLogFile(),
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".branflu", "config.yaml")
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "branflu.log"
	}
	return filepath.Join(home, ".branflu", "branflu.log")
}

// Load builds the configuration from defaults, an optional yaml file, and
// environment overrides, in that order. A missing file is not an error.
func Load(path string) (*Config, error) {
	// Pick up a local .env first so its variables participate in the
	// override pass. Absence is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BRANFLU_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BRANFLU_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("BRANFLU_DEV_BYPASS"); v == "1" || v == "true" {
		c.Auth.DevBypass = true
	}
	if v := os.Getenv("BRANFLU_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BRANFLU_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("BRANFLU_DARK_MODE"); v != "" {
		c.UI.DarkMode = v == "1" || v == "true"
	}
}

// Validate checks the settings that would otherwise fail deep inside the
// flow.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	return nil
}

// RequestTimeout returns the parsed API timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
