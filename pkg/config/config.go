// Package config provides configuration loading and management for volpatch.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Sampler parameters
	Sampler struct {
		// PatchSize is the spatial extent of extracted patches, one entry
		// per spatial dimension
		PatchSize []int `yaml:"patchSize"`

		// MaxAttempts caps the rejection-sampling loop per patch;
		// zero means unbounded
		MaxAttempts int `yaml:"maxAttempts"`

		// Seed seeds the random window generator
		Seed int64 `yaml:"seed"`

		// ValidateLabels checks that label volumes are non-negative before
		// sampling
		ValidateLabels bool `yaml:"validateLabels"`
	} `yaml:"sampler"`

	// Queue parameters
	Queue struct {
		// Workers is the number of concurrent extraction goroutines
		Workers int `yaml:"workers"`

		// Capacity is the buffered patch channel size
		Capacity int `yaml:"capacity"`
	} `yaml:"queue"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// PreviewDir is the directory where patch preview images are
		// written when previews are enabled
		PreviewDir string `yaml:"previewDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default sampler parameters
	cfg.Sampler.PatchSize = []int{32, 32, 32}
	cfg.Sampler.MaxAttempts = 0 // unbounded, matching the brute-force search
	cfg.Sampler.Seed = 0
	cfg.Sampler.ValidateLabels = false

	// Set default queue parameters
	cfg.Queue.Workers = runtime.NumCPU()
	cfg.Queue.Capacity = 2 * runtime.NumCPU()

	// Set default output parameters
	cfg.Output.Verbose = true
	cfg.Output.PreviewDir = "patch_previews"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
