package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".repomap", cfg.Index.Dir)
	assert.Zero(t, cfg.Index.Workers)
	assert.Equal(t, "tsconfig.json", cfg.Resolver.ConfigFile)
	assert.Equal(t, 20, cfg.Rank.TopK)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".repomap.toml", `
[index]
dir = ".idx"
workers = 4

[rank]
top_k = 30

[exclude]
patterns = ["generated/"]
gitignore = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".idx", cfg.Index.Dir)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, 30, cfg.Rank.TopK)
	assert.Equal(t, []string{"generated/"}, cfg.Exclude.Patterns)
	assert.False(t, cfg.Exclude.Gitignore)
	// Untouched sections keep their defaults.
	assert.Equal(t, "tsconfig.json", cfg.Resolver.ConfigFile)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".repomap.yaml", `
index:
  workers: 8
output:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Index.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".repomap.json", `{
  "resolver": {"config_file": "jsconfig.json"},
  "rank": {"top_k": 10}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jsconfig.json", cfg.Resolver.ConfigFile)
	assert.Equal(t, 10, cfg.Rank.TopK)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".repomap.toml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".repomap.toml", "not [valid toml")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefaultSearchOrder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".repomap.yaml", "rank:\n  top_k: 7\n")
	writeConfig(t, dir, ".repomap.toml", "[rank]\ntop_k = 3\n")

	cfg := LoadOrDefault(dir)
	assert.Equal(t, 3, cfg.Rank.TopK, "toml wins over yaml in the search order")
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault(t.TempDir())
	assert.Equal(t, DefaultConfig(), cfg)

	dir := t.TempDir()
	writeConfig(t, dir, ".repomap.toml", "broken [")
	cfg = LoadOrDefault(dir)
	assert.Equal(t, DefaultConfig(), cfg, "an unreadable config degrades to defaults")
}
