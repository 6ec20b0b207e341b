// Package config loads rustcx configuration from TOML, YAML, or JSON files
// and supplies the defaults that reproduce the reference behavior.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for rustcx. The toml tags keep
// files generated by "rustcx init" loadable by koanf.
type Config struct {
	// Scan controls file discovery.
	Scan ScanConfig `koanf:"scan" toml:"scan"`

	// Thresholds above which a function is flagged.
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Exclude defines file exclusion patterns.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output controls report formatting.
	Output OutputConfig `koanf:"output" toml:"output"`
}

// ScanConfig controls which files are discovered.
type ScanConfig struct {
	Roots     []string `koanf:"roots" toml:"roots"`
	Extension string   `koanf:"extension" toml:"extension"`
	Jobs      int      `koanf:"jobs" toml:"jobs"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	MaxLines      int `koanf:"max_lines" toml:"max_lines"`
	MaxNesting    int `koanf:"max_nesting" toml:"max_nesting"`
	MaxCyclomatic int `koanf:"max_cyclomatic" toml:"max_cyclomatic"`
}

// ExcludeConfig defines file exclusion patterns (gitignore syntax).
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, table, toon
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with the reference defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Roots:     []string{"."},
			Extension: ".rs",
			Jobs:      0, // 2x NumCPU
		},
		Thresholds: ThresholdConfig{
			MaxLines:      50,
			MaxNesting:    4,
			MaxCyclomatic: 10,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{},
			Dirs: []string{
				"target",
				".git",
				"vendor",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format:  "text",
			Verbose: false,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configNames are the standard file names searched by LoadOrDefault.
var configNames = []string{
	"rustcx.toml",
	"rustcx.yaml",
	"rustcx.yml",
	"rustcx.json",
	".rustcx.toml",
	".rustcx.yaml",
	".rustcx.yml",
	".rustcx.json",
}

// LoadOrDefault tries the standard config locations in the current
// directory and returns defaults when none loads.
func LoadOrDefault() *Config {
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
