// Package config provides configuration loading and management for the
// cardioscan backend. It handles loading configuration from YAML files,
// provides default values, and applies environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Server parameters
	Server struct {
		// Host is the interface the HTTP server binds to.
		Host string `yaml:"host"`

		// Port is the TCP port the HTTP server listens on.
		Port int `yaml:"port"`

		// ReadTimeoutSec and WriteTimeoutSec bound request handling.
		ReadTimeoutSec  int `yaml:"readTimeoutSec"`
		WriteTimeoutSec int `yaml:"writeTimeoutSec"`

		// MaxUploadMB limits the accepted multipart upload size.
		MaxUploadMB int64 `yaml:"maxUploadMB"`
	} `yaml:"server"`

	// Storage parameters
	Storage struct {
		// UploadDir is where uploaded scan files are kept for the request.
		UploadDir string `yaml:"uploadDir"`

		// SlicesDir is where rendered slice PNGs are written. Passed to
		// the renderer explicitly so test runs can isolate their output.
		SlicesDir string `yaml:"slicesDir"`
	} `yaml:"storage"`

	// Logging parameters
	Logging struct {
		// Verbose switches the logger to development (debug) output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.ReadTimeoutSec = 60
	cfg.Server.WriteTimeoutSec = 60
	cfg.Server.MaxUploadMB = 100

	cfg.Storage.UploadDir = "uploads"
	cfg.Storage.SlicesDir = "slices"

	cfg.Logging.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides on top. If the file doesn't exist, it returns the default
// configuration (with overrides applied).
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides lets the environment win over file values, so the
// server can be reconfigured in containers without editing YAML.
func (c *Config) applyEnvOverrides() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)
	c.Storage.SlicesDir = getEnv("SLICES_DIR", c.Storage.SlicesDir)
	if os.Getenv("DEBUG") == "true" {
		c.Logging.Verbose = true
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
