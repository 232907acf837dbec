package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultAllowedArches are the architectures analysed when none are configured.
var DefaultAllowedArches = []string{"armv7hl", "aarch64", "ppc64le", "s390x", "x86_64"}

// GlobalConfig holds the process-wide settings of the resolver.
type GlobalConfig struct {
	AllowedArches      []string      `yaml:"allowed_arches"`
	SkippedMaintainers []string      `yaml:"skipped_maintainers"`
	Workers            int           `yaml:"workers"`
	ConfigDir          string        `yaml:"config_dir"`
	DataFile           string        `yaml:"data_file"`
	SignatureFile      string        `yaml:"signature_file"`
	KeyringFile        string        `yaml:"keyring_file"`
	OutputDir          string        `yaml:"output_dir"`
	Logging            LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultGlobalConfig returns the settings used when no file is given.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		AllowedArches: append([]string(nil), DefaultAllowedArches...),
		Workers:       4,
		ConfigDir:     "configs",
		DataFile:      "data.json",
		OutputDir:     "output",
		Logging:       LoggingConfig{Level: "info"},
	}
}

// LoadGlobalConfig reads a YAML settings file over the defaults. An empty
// path returns the defaults.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading global config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing global config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("global config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *GlobalConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if len(c.AllowedArches) == 0 {
		return fmt.Errorf("allowed_arches must not be empty")
	}
	for _, arch := range c.AllowedArches {
		if strings.TrimSpace(arch) == "" {
			return fmt.Errorf("allowed_arches contains an empty entry")
		}
	}
	return nil
}

// BindFlags registers command line overrides for the settings on fs.
func (c *GlobalConfig) BindFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&c.AllowedArches, "arch", c.AllowedArches, "Allowed architectures")
	fs.StringSliceVar(&c.SkippedMaintainers, "skip-maintainer", c.SkippedMaintainers,
		"Maintainers never recommended as owners")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Number of views processed in parallel")
	fs.StringVar(&c.ConfigDir, "config-dir", c.ConfigDir, "Directory with configuration documents")
	fs.StringVar(&c.DataFile, "data", c.DataFile, "Analysis result store (json or yaml, optionally .gz, .zst or .xz)")
	fs.StringVar(&c.SignatureFile, "signature", c.SignatureFile, "Armored detached signature of the result store")
	fs.StringVar(&c.KeyringFile, "keyring", c.KeyringFile, "Armored public keyring used to check --signature")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "Directory for reports")
}

// OverrideFrom copies the flags changed on fs onto c. fs must carry the
// flags registered by BindFlags; values loaded from a settings file are
// kept for every flag left unset.
func (c *GlobalConfig) OverrideFrom(fs *pflag.FlagSet) error {
	own := pflag.NewFlagSet("settings", pflag.ContinueOnError)
	c.BindFlags(own)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		target := own.Lookup(f.Name)
		if target == nil || err != nil {
			return
		}
		if src, ok := f.Value.(pflag.SliceValue); ok {
			if dst, ok := target.Value.(pflag.SliceValue); ok {
				err = dst.Replace(src.GetSlice())
				return
			}
		}
		err = own.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return fmt.Errorf("applying command line settings: %w", err)
	}
	return nil
}
