// Package index builds and persists the repository index: per-file parse
// records plus the derived dependency graph, stored under <root>/.repomap.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Decolo/repomap/pkg/graph"
	"github.com/Decolo/repomap/pkg/models"
)

const (
	// StateVersion is the current on-disk state format version.
	StateVersion = 1

	// StateFileName holds the per-file parse records.
	StateFileName = "state.json"
	// GraphFileName holds the serialized dependency graph.
	GraphFileName = "graph.json"
)

//go:embed state_schema.json
var stateSchemaJSON []byte

var (
	stateSchemaOnce sync.Once
	stateSchema     *jsonschema.Schema
	stateSchemaErr  error
)

func compiledStateSchema() (*jsonschema.Schema, error) {
	stateSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(stateSchemaJSON))
		if err != nil {
			stateSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("state_schema.json", doc); err != nil {
			stateSchemaErr = err
			return
		}
		stateSchema, stateSchemaErr = c.Compile("state_schema.json")
	})
	return stateSchema, stateSchemaErr
}

// State is the persisted index state: one record per discovered file,
// keyed by repository-relative POSIX path.
type State struct {
	Version     int                          `json:"version"`
	GeneratedAt string                       `json:"generatedAt"`
	RepoRoot    string                       `json:"repoRoot,omitempty"`
	Files       map[string]models.FileRecord `json:"files"`
}

// statePath returns the state file location under the index directory.
func statePath(indexDir string) string {
	return filepath.Join(indexDir, StateFileName)
}

// graphPath returns the graph file location under the index directory.
func graphPath(indexDir string) string {
	return filepath.Join(indexDir, GraphFileName)
}

// SaveState writes the state file, creating the index directory if needed.
func SaveState(indexDir string, st *State) error {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(indexDir), data, 0o644)
}

// LoadState reads and validates the state file. A missing file returns
// (nil, nil); a malformed or schema-violating file returns an error so
// callers fall back to a full rebuild deliberately, not silently.
func LoadState(indexDir string) (*State, error) {
	data, err := os.ReadFile(statePath(indexDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sch, err := compiledStateSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling state schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", StateFileName, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", StateFileName, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", StateFileName, err)
	}
	if st.Files == nil {
		st.Files = make(map[string]models.FileRecord)
	}
	return &st, nil
}

// SaveGraph writes the serialized graph next to the state file.
func SaveGraph(indexDir string, g *graph.Graph) error {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(graphPath(indexDir), data, 0o644)
}

// LoadGraph reads the persisted graph. A missing file returns ErrNoIndex.
func LoadGraph(indexDir string) (*graph.Graph, error) {
	data, err := os.ReadFile(graphPath(indexDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoIndex
		}
		return nil, err
	}
	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", GraphFileName, err)
	}
	return &g, nil
}
