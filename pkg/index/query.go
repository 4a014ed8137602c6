package index

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Decolo/repomap/pkg/config"
	"github.com/Decolo/repomap/pkg/graph"
	"github.com/Decolo/repomap/pkg/models"
	"github.com/Decolo/repomap/pkg/ranker"
)

// Snapshot is a loaded index ready for queries.
type Snapshot struct {
	State *State
	Graph *graph.Graph
}

// LoadSnapshot reads the persisted state and graph for a repository root.
// Returns ErrNoIndex when either file is missing.
func LoadSnapshot(root string, cfg *config.Config) (*Snapshot, error) {
	indexDir := IndexDir(root, cfg)
	st, err := LoadState(indexDir)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoIndex
	}
	g, err := LoadGraph(indexDir)
	if err != nil {
		return nil, err
	}
	return &Snapshot{State: st, Graph: g}, nil
}

// NormalizeSeed converts a user-supplied seed path to the repository-relative
// POSIX form used as state keys.
func NormalizeSeed(root, seed string) string {
	p := seed
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
	}
	p = filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(p, "./")
}

// Context ranks the snapshot against the given seeds and assembles the
// context bundle. Seeds must already be repository-relative.
func (s *Snapshot) Context(seeds []string, topK int) (models.ContextBundle, []models.RankedFile) {
	ranked := ranker.Rank(s.Graph, s.State.Files, seeds, ranker.Options{TopK: topK})
	return ranker.AssembleContext(ranked, seeds, topK), ranked
}

// SymbolEntry is one definition with its inbound reference count.
type SymbolEntry struct {
	Name       string `json:"name" toon:"name"`
	Type       string `json:"type" toon:"type"`
	Line       int    `json:"line" toon:"line"`
	References int    `json:"references" toon:"references"`
}

// FileSymbols summarizes what a file defines and how the graph touches it.
type FileSymbols struct {
	Path        string        `json:"path" toon:"path"`
	Language    string        `json:"language" toon:"language"`
	Definitions []SymbolEntry `json:"definitions" toon:"definitions"`
	// Dependencies are files this file imports, deduplicated and sorted.
	Dependencies []string `json:"dependencies" toon:"dependencies"`
	// Dependents are files that import this file, deduplicated and sorted.
	Dependents []string `json:"dependents" toon:"dependents"`
}

// Symbols reports the definitions and file-level dependency neighborhood of
// one file. Returns ok=false when the file is not in the index.
func (s *Snapshot) Symbols(relPath string) (FileSymbols, bool) {
	rec, ok := s.State.Files[relPath]
	if !ok {
		return FileSymbols{}, false
	}

	fs := FileSymbols{Path: relPath, Language: rec.Language}

	refCounts := make(map[string]int)
	deps := make(map[string]bool)
	dependents := make(map[string]bool)
	fileID := graph.FileNodeID(relPath)
	for _, e := range s.Graph.Edges() {
		switch e.Relation {
		case graph.RelationReferences:
			if n, ok := s.Graph.NodeByKey(e.Target); ok &&
				n.Attributes.Kind == graph.NodeSymbol && n.Attributes.OwnerFile == relPath {
				refCounts[e.Target]++
			}
		case graph.RelationDependsOn:
			if e.Source == fileID {
				if n, ok := s.Graph.NodeByKey(e.Target); ok && n.Attributes.Kind == graph.NodeFile {
					deps[n.Attributes.Path] = true
				}
			}
			if e.Target == fileID {
				if n, ok := s.Graph.NodeByKey(e.Source); ok && n.Attributes.Kind == graph.NodeFile {
					dependents[n.Attributes.Path] = true
				}
			}
		}
	}

	for _, tag := range rec.Tags {
		if !tag.IsDef() {
			continue
		}
		fs.Definitions = append(fs.Definitions, SymbolEntry{
			Name:       tag.Name,
			Type:       tag.Type,
			Line:       tag.Line,
			References: refCounts[graph.SymbolNodeID(relPath, tag.Name, tag.Line)],
		})
	}
	sort.Slice(fs.Definitions, func(i, j int) bool {
		a, b := fs.Definitions[i], fs.Definitions[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Name < b.Name
	})

	fs.Dependencies = sortedKeys(deps)
	fs.Dependents = sortedKeys(dependents)
	return fs, true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
