// Package config provides configuration loading and management for
// contours2dvh. It handles loading configuration from YAML files and
// provides default values.
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
	// Processing parameters
	Processing struct {
		// Workers specifies how many contour planes are rasterized
		// concurrently
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Threshold parameters for the dose-derived comparison volume
	Threshold struct {
		// Min is the lower dose bound in Gy; zero leaves it open
		Min float64 `yaml:"min"`

		// Max is the upper dose bound in Gy; zero leaves it open
		Max float64 `yaml:"max"`
	} `yaml:"threshold"`

	// Report parameters
	Report struct {
		// DosePercents lists the D-values to report, as percentages of
		// the region volume
		DosePercents []float64 `yaml:"dosePercents"`

		// VolumeDoses lists the V-values to report, as dose levels in Gy
		VolumeDoses []float64 `yaml:"volumeDoses"`
	} `yaml:"report"`

	// Output parameters
	Output struct {
		// SaveSlices determines whether mask cross sections are written
		// as image files
		SaveSlices bool `yaml:"saveSlices"`

		// SliceDir is the directory mask cross sections are written to
		SliceDir string `yaml:"sliceDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.Workers = runtime.NumCPU() // Use all available cores by default

	// Set default threshold parameters
	cfg.Threshold.Min = 45.0
	cfg.Threshold.Max = 0

	// Set default report parameters
	cfg.Report.DosePercents = []float64{2, 50, 95, 98}
	cfg.Report.VolumeDoses = []float64{20, 40, 60}

	// Set default output parameters
	cfg.Output.SaveSlices = false
	cfg.Output.SliceDir = "mask_slices"
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
