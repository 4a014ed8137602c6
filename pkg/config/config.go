// Package config loads repomap configuration from .repomap config files.
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

// Config holds all configuration options for repomap.
type Config struct {
	// Index settings for the on-disk state under <root>/.repomap.
	Index IndexConfig `koanf:"index" toml:"index" yaml:"index" json:"index"`

	// Resolver settings for module specifier resolution.
	Resolver ResolverConfig `koanf:"resolver" toml:"resolver" yaml:"resolver" json:"resolver"`

	// Rank settings for context selection.
	Rank RankConfig `koanf:"rank" toml:"rank" yaml:"rank" json:"rank"`

	// Exclude patterns applied during discovery.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Output settings.
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// IndexConfig controls index construction and placement.
type IndexConfig struct {
	// Dir is the index directory, relative to the repository root.
	Dir string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	// Workers caps the parse worker pool; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`
}

// ResolverConfig controls path-alias resolution.
type ResolverConfig struct {
	// ConfigFile is the root configuration file name (tsconfig-style).
	ConfigFile string `koanf:"config_file" toml:"config_file" yaml:"config_file" json:"config_file"`
}

// RankConfig controls ranking defaults.
type RankConfig struct {
	TopK int `koanf:"top_k" toml:"top_k" yaml:"top_k" json:"top_k"`
}

// ExcludeConfig defines discovery exclusion patterns.
type ExcludeConfig struct {
	// Patterns are gitignore-style globs applied on top of the defaults.
	Patterns []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	// Gitignore enables honoring the repository's .gitignore files.
	Gitignore bool `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Dir:     ".repomap",
			Workers: 0,
		},
		Resolver: ResolverConfig{
			ConfigFile: "tsconfig.json",
		},
		Rank: RankConfig{
			TopK: 20,
		},
		Exclude: ExcludeConfig{
			Patterns:  nil,
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, choosing the parser by extension.
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

// configNames are the file names searched by LoadOrDefault, in order.
var configNames = []string{
	".repomap.toml",
	".repomap.yaml",
	".repomap.yml",
	".repomap.json",
}

// LoadOrDefault loads the first config file found under root, or returns
// defaults when none exists or loading fails.
func LoadOrDefault(root string) *Config {
	for _, name := range configNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}
