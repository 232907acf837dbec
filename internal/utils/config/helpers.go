package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// Workers returns the number of concurrent workers
func (c *ConfigHelpers) Workers() int {
	if c.config.Workers < 1 {
		return 1
	}
	return c.config.Workers
}

// AllowedArches returns the architectures an empty arch filter expands to.
func (c *ConfigHelpers) AllowedArches() []string {
	return c.config.AllowedArches
}

// SkippedMaintainers returns the maintainers excluded from recommendations.
func (c *ConfigHelpers) SkippedMaintainers() []string {
	return c.config.SkippedMaintainers
}

// ConfigDir returns the absolute path to the configuration directory
func (c *ConfigHelpers) ConfigDir() (string, error) {
	return filepath.Abs(c.config.ConfigDir)
}

// DataFile returns the absolute path to the analysis result store
func (c *ConfigHelpers) DataFile() (string, error) {
	return filepath.Abs(c.config.DataFile)
}

// OutputDir returns the absolute path to the output directory
func (c *ConfigHelpers) OutputDir() (string, error) {
	return filepath.Abs(c.config.OutputDir)
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// IsDebugMode returns true if debug logging is enabled
func (c *ConfigHelpers) IsDebugMode() bool {
	return c.config.Logging.Level == "debug"
}

// HasSignature reports whether the result store should be signature checked.
func (c *ConfigHelpers) HasSignature() bool {
	return c.config.SignatureFile != ""
}

// GetConfig returns the underlying global config (for advanced usage)
func (c *ConfigHelpers) GetConfig() *GlobalConfig {
	return c.config
}

// CreateOutputDir ensures the output directory exists
func (c *ConfigHelpers) CreateOutputDir() (string, error) {
	outputDir, err := c.OutputDir()
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	return outputDir, createDirIfNotExists(outputDir)
}

// Helper function to create directories
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
