// Package config provides configuration management for the tcab compiler
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// OutputFormat controls what `tcab build` writes next to the source file.
type OutputFormat string

const (
	// FormatJSON writes the organized program as <file>.org.json.
	FormatJSON OutputFormat = "json"

	// FormatNone suppresses the organized-program dump; diagnostics only.
	FormatNone OutputFormat = "none"
)

// IsValid reports whether the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatNone:
		return true
	default:
		return false
	}
}

// SourceMapFormat controls source map output.
type SourceMapFormat string

const (
	// MapSeparate writes source maps to <output>.map files.
	MapSeparate SourceMapFormat = "separate"

	// MapNone disables source map generation.
	MapNone SourceMapFormat = "none"
)

// Config represents the complete tcab project configuration.
type Config struct {
	Build     BuildConfig     `toml:"build"`
	SourceMap SourceMapConfig `toml:"sourcemaps"`
}

// BuildConfig controls the front-end driver.
type BuildConfig struct {
	// SourceExtension is appended during import resolution and expected on
	// entry files. Must start with a dot.
	SourceExtension string `toml:"source_extension"`

	// OutputFormat selects the organized-program dump format.
	// Valid values: "json", "none".
	OutputFormat OutputFormat `toml:"output_format"`

	// Color is read from the configuration files; the terminal output of
	// pkg/ui is styled whatever its value.
	Color bool `toml:"color"`

	// MaxDiagnostics caps how many diagnostics are printed; 0 means all.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// SourceMapConfig controls source map generation.
type SourceMapConfig struct {
	// Enabled controls whether source maps are generated.
	Enabled bool `toml:"enabled"`

	// Format controls the source map output form.
	// Valid values: "separate", "none".
	Format SourceMapFormat `toml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			SourceExtension: ".tcab",
			OutputFormat:    FormatJSON,
			Color:           true,
			MaxDiagnostics:  0,
		},
		SourceMap: SourceMapConfig{
			Enabled: true,
			Format:  MapSeparate,
		},
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. CLI flags (highest priority) - passed as overrides
// 2. Project tcab.toml (current directory)
// 3. User config (~/.tcab/config.toml)
// 4. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".tcab", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "tcab.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.Build.SourceExtension != "" {
			cfg.Build.SourceExtension = overrides.Build.SourceExtension
		}
		if overrides.Build.OutputFormat != "" {
			cfg.Build.OutputFormat = overrides.Build.OutputFormat
		}
		if overrides.SourceMap.Format != "" {
			cfg.SourceMap.Format = overrides.SourceMap.Format
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads a TOML configuration file into the provided config.
// A missing file is not an error; defaults apply.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Build.SourceExtension, ".") {
		return fmt.Errorf("invalid source_extension: %q (must start with '.')",
			c.Build.SourceExtension)
	}

	if !c.Build.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be 'json' or 'none')",
			c.Build.OutputFormat)
	}

	if c.Build.MaxDiagnostics < 0 {
		return fmt.Errorf("invalid max_diagnostics: %d (must be >= 0)",
			c.Build.MaxDiagnostics)
	}

	switch c.SourceMap.Format {
	case MapSeparate, MapNone:
		// Valid
	default:
		return fmt.Errorf("invalid sourcemap format: %q (must be 'separate' or 'none')",
			c.SourceMap.Format)
	}

	return nil
}
