// Package config provides configuration loading and management for
// microseg3d. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pre-processing parameters
	Preprocess struct {
		// NormalizeLow and NormalizeHigh are the percentile clipping
		// bounds of intensity normalization
		NormalizeLow  float64 `yaml:"normalizeLow"`
		NormalizeHigh float64 `yaml:"normalizeHigh"`

		// SmoothSigma is the Gaussian smoothing width in voxels
		SmoothSigma float64 `yaml:"smoothSigma"`
	} `yaml:"preprocess"`

	// Seed construction parameters
	Seed struct {
		// Method selects the mid-frame detection method ("z" or
		// "intensity")
		Method string `yaml:"method"`

		// HoleMin discards mid-frame components below this voxel count
		HoleMin int `yaml:"holeMin"`

		// BackgroundSeed adds the z=0 background anchor seed
		BackgroundSeed bool `yaml:"backgroundSeed"`
	} `yaml:"seed"`

	// Chan-Vese driver parameters
	ChanVese struct {
		// Iterations bounds the level set evolution
		Iterations int `yaml:"iterations"`

		// MaxRMSError is the RMS stopping threshold
		MaxRMSError float64 `yaml:"maxRMSError"`

		// Epsilon is the Heaviside regularization width
		Epsilon float64 `yaml:"epsilon"`

		// CurvatureWeight scales the length regularizer
		CurvatureWeight float64 `yaml:"curvatureWeight"`

		// SmoothingWeight is the reinitialization smoothing weight
		SmoothingWeight float64 `yaml:"smoothingWeight"`
	} `yaml:"chanVese"`

	// Fast-marching driver parameters
	FastMarching struct {
		// TimeThreshold bounds the arrival time of the final
		// threshold; 0 leaves the bound open
		TimeThreshold float64 `yaml:"timeThreshold"`
	} `yaml:"fastMarching"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default pre-processing parameters
	cfg.Preprocess.NormalizeLow = 0.5
	cfg.Preprocess.NormalizeHigh = 99.5
	cfg.Preprocess.SmoothSigma = 1.0

	// Set default seed parameters
	cfg.Seed.Method = "z"
	cfg.Seed.HoleMin = 10
	cfg.Seed.BackgroundSeed = true

	// Set default Chan-Vese parameters
	cfg.ChanVese.Iterations = 100
	cfg.ChanVese.MaxRMSError = 0.02
	cfg.ChanVese.Epsilon = 1.0
	cfg.ChanVese.CurvatureWeight = 1.0
	cfg.ChanVese.SmoothingWeight = 0.0

	// Set default fast-marching parameters
	cfg.FastMarching.TimeThreshold = 0

	// Set default output parameters
	cfg.Output.Verbose = true

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
