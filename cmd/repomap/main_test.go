package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decolo/repomap/internal/vcs"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().Run(append([]string{"repomap"}, args...))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func seedRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/util.ts", "export function helper() { return 1 }\n")
	writeFile(t, root, "src/app.ts", "import { helper } from './util'\nexport function main() { return helper() }\n")
	return root
}

func TestInitCreatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".repomap.toml")

	require.NoError(t, run(t, "init", "--path", path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# repomap configuration")
	assert.Contains(t, string(content), "[index]")

	err = run(t, "init", "--path", path)
	require.Error(t, err, "refuses to overwrite without --force")
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, run(t, "init", "--path", path, "--force"))
}

func TestInitYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".repomap.yaml")
	require.NoError(t, run(t, "init", "--config-format", "yaml", "--path", path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "index:")
}

func TestInitUnknownFormat(t *testing.T) {
	err := run(t, "init", "--config-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config format")
}

func TestBuildCommand(t *testing.T) {
	root := seedRepo(t)

	require.NoError(t, run(t, "--quiet", "build", root))
	assert.FileExists(t, filepath.Join(root, ".repomap", "state.json"))
	assert.FileExists(t, filepath.Join(root, ".repomap", "graph.json"))
}

func TestContextCommandJSON(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	out := filepath.Join(t.TempDir(), "context.json")
	require.NoError(t, run(t, "--quiet", "--format", "json", "--output", out,
		"context", "--seed", "src/app.ts", root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var payload struct {
		Seeds  []string `json:"seeds"`
		Bundle struct {
			Primary []struct {
				Path string `json:"path"`
			} `json:"primary"`
		} `json:"bundle"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, []string{"src/app.ts"}, payload.Seeds)
	require.Len(t, payload.Bundle.Primary, 1)
	assert.Equal(t, "src/app.ts", payload.Bundle.Primary[0].Path)
}

type fakeDiff struct {
	changed []string
	deleted []string
}

func (f fakeDiff) Changed(string, string) ([]string, error) { return f.changed, nil }
func (f fakeDiff) Deleted(string, string) ([]string, error) { return f.deleted, nil }

func TestContextCommandDiffRange(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	orig := vcs.DefaultSource()
	vcs.SetDefaultSource(fakeDiff{changed: []string{"src/util.ts", "README.md"}})
	t.Cleanup(func() { vcs.SetDefaultSource(orig) })

	out := filepath.Join(t.TempDir(), "context.json")
	require.NoError(t, run(t, "--quiet", "--format", "json", "--output", out,
		"context", "--diff-range", "main..HEAD", root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var payload struct {
		Seeds []string `json:"seeds"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, []string{"src/util.ts"}, payload.Seeds,
		"unindexed changed files are not seeds")
}

func TestContextCommandNoSeeds(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	err := run(t, "--quiet", "context", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no seeds")
}

func TestContextCommandNoIndex(t *testing.T) {
	root := t.TempDir()
	err := run(t, "--quiet", "context", "--seed", "a.ts", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index")
}

func TestSymbolsCommandJSON(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	out := filepath.Join(t.TempDir(), "symbols.json")
	require.NoError(t, run(t, "--quiet", "--format", "json", "--output", out,
		"symbols", "src/util.ts", root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"helper"`)
	assert.Contains(t, string(data), "src/app.ts")
}

func TestSymbolsCommandUnknownFile(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	err := run(t, "--quiet", "symbols", "missing.ts", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the index")
}

func TestGraphCommandJSON(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	out := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, run(t, "--quiet", "--format", "json", "--output", out, "graph", root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fingerprint"`)
	assert.Contains(t, string(data), `"files": 2`)
}

func TestGraphCommandMermaid(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	out := filepath.Join(t.TempDir(), "graph.mmd")
	require.NoError(t, run(t, "--quiet", "--output", out, "graph", "--mermaid", root))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "graph LR"))
}

func TestUpdateCommand(t *testing.T) {
	root := seedRepo(t)
	require.NoError(t, run(t, "--quiet", "build", root))

	writeFile(t, root, "src/extra.ts", "export const x = 1\n")
	require.NoError(t, run(t, "--quiet", "update", root))

	data, err := os.ReadFile(filepath.Join(root, ".repomap", "state.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "src/extra.ts")
}

func TestMcpManifest(t *testing.T) {
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = orig })

	require.NoError(t, run(t, "mcp", "--manifest"))
	require.NoError(t, w.Close())

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "io.github.decolo/repomap")
}
