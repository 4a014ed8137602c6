// Package graph holds the typed file/symbol dependency multigraph and the
// builder that constructs it from file records.
package graph

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Relation labels an edge.
type Relation string

const (
	RelationDefines    Relation = "defines"
	RelationReferences Relation = "references"
	RelationDependsOn  Relation = "depends_on"
	RelationTestCovers Relation = "test_covers"
)

// Confidence grades how certain a link is.
type Confidence string

const (
	ConfidenceHigh       Confidence = "high"
	ConfidenceImportOnly Confidence = "import_only"
	ConfidenceFallback   Confidence = "fallback"
)

// Resolution records which mechanism produced an edge.
type Resolution string

const (
	ResolutionDefinition        Resolution = "definition"
	ResolutionImport            Resolution = "import"
	ResolutionImportDeclaration Resolution = "import_declaration"
	ResolutionNameMatch         Resolution = "name_match"
)

// NodeKind distinguishes file nodes from symbol nodes.
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeSymbol NodeKind = "symbol"
)

// NodeAttrs is the closed attribute set for a node. File nodes use Path,
// Language, and IsTest; symbol nodes use Name, OwnerFile, Line, SymbolType.
type NodeAttrs struct {
	Kind       NodeKind `json:"kind" toon:"kind"`
	Path       string   `json:"path,omitempty" toon:"path,omitempty"`
	Language   string   `json:"language,omitempty" toon:"language,omitempty"`
	IsTest     bool     `json:"isTest,omitempty" toon:"isTest,omitempty"`
	Name       string   `json:"name,omitempty" toon:"name,omitempty"`
	OwnerFile  string   `json:"ownerFile,omitempty" toon:"ownerFile,omitempty"`
	Line       int      `json:"line,omitempty" toon:"line,omitempty"`
	SymbolType string   `json:"symbolType,omitempty" toon:"symbolType,omitempty"`
}

// Node is a keyed graph node.
type Node struct {
	Key        string    `json:"key" toon:"key"`
	Attributes NodeAttrs `json:"attributes" toon:"attributes"`
}

// EdgeAttrs is the closed attribute set for an edge.
type EdgeAttrs struct {
	Symbol      string     `json:"symbol" toon:"symbol"`
	LocalSymbol string     `json:"localSymbol,omitempty" toon:"localSymbol,omitempty"`
	Line        int        `json:"line,omitempty" toon:"line,omitempty"`
	OwnerFile   string     `json:"ownerFile" toon:"ownerFile"`
	Confidence  Confidence `json:"confidence" toon:"confidence"`
	Resolution  Resolution `json:"resolution" toon:"resolution"`
}

// Edge is a keyed directed edge. Relation is encoded in the key and kept as
// a field for filtering.
type Edge struct {
	Key        string    `json:"key" toon:"key"`
	Relation   Relation  `json:"relation" toon:"relation"`
	Source     string    `json:"source" toon:"source"`
	Target     string    `json:"target" toon:"target"`
	Attributes EdgeAttrs `json:"attributes" toon:"attributes"`
}

// FileNodeID returns the node key for a repository-relative path.
func FileNodeID(relPath string) string {
	return "file:" + relPath
}

// SymbolNodeID returns the node key for a symbol definition. Path and name
// are escaped so the key stays splittable on ':'.
func SymbolNodeID(relPath, name string, line int) string {
	return "sym:" + url.QueryEscape(relPath) + ":" + url.QueryEscape(name) + ":" + strconv.Itoa(line)
}

// EdgeKey derives the deduplication key for an edge. Two edges with equal
// keys are the same edge; distinct attribute salts preserve multiplicity.
func EdgeKey(rel Relation, source, target string, attrs EdgeAttrs) string {
	return strings.Join([]string{
		string(rel),
		source,
		target,
		attrs.Symbol,
		attrs.LocalSymbol,
		strconv.Itoa(attrs.Line),
		attrs.OwnerFile,
		string(attrs.Resolution),
	}, "|")
}

// Graph is a directed multigraph with string-keyed nodes and edges.
// Insertion order is preserved so identical inputs serialize identically.
type Graph struct {
	nodes     map[string]Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string]Edge),
	}
}

// AddNode inserts a node. Re-adding an existing key is a no-op.
func (g *Graph) AddNode(key string, attrs NodeAttrs) {
	if _, ok := g.nodes[key]; ok {
		return
	}
	g.nodes[key] = Node{Key: key, Attributes: attrs}
	g.nodeOrder = append(g.nodeOrder, key)
}

// HasNode reports whether the key exists.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// NodeByKey returns the node for a key.
func (g *Graph) NodeByKey(key string) (Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// AddEdge inserts an edge, deduplicating on the derived key. Returns false
// when an edge with the same key already exists.
func (g *Graph) AddEdge(rel Relation, source, target string, attrs EdgeAttrs) bool {
	key := EdgeKey(rel, source, target, attrs)
	if _, ok := g.edges[key]; ok {
		return false
	}
	g.edges[key] = Edge{Key: key, Relation: rel, Source: source, Target: target, Attributes: attrs}
	g.edgeOrder = append(g.edgeOrder, key)
	return true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, k := range g.nodeOrder {
		out = append(out, g.nodes[k])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, k := range g.edgeOrder {
		out = append(out, g.edges[k])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// FileNodes returns the file nodes in insertion order.
func (g *Graph) FileNodes() []Node {
	var out []Node
	for _, k := range g.nodeOrder {
		if n := g.nodes[k]; n.Attributes.Kind == NodeFile {
			out = append(out, n)
		}
	}
	return out
}

// Fingerprint digests the sorted node and edge keys. Equal fingerprints
// mean structurally equal graphs.
func (g *Graph) Fingerprint() uint64 {
	keys := make([]string, 0, len(g.nodes)+len(g.edges))
	keys = append(keys, g.nodeOrder...)
	keys = append(keys, g.edgeOrder...)
	sort.Strings(keys)

	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// wireGraph is the on-disk shape of graph.json.
type wireGraph struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`
}

// MarshalJSON serializes nodes and edges in insertion order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireGraph{Nodes: g.Nodes(), Edges: g.Edges()})
}

// UnmarshalJSON rebuilds the graph from its wire shape.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.nodes = make(map[string]Node, len(w.Nodes))
	g.nodeOrder = g.nodeOrder[:0]
	g.edges = make(map[string]Edge, len(w.Edges))
	g.edgeOrder = g.edgeOrder[:0]
	for _, n := range w.Nodes {
		if _, ok := g.nodes[n.Key]; ok {
			continue
		}
		g.nodes[n.Key] = n
		g.nodeOrder = append(g.nodeOrder, n.Key)
	}
	for _, e := range w.Edges {
		if _, ok := g.edges[e.Key]; ok {
			continue
		}
		g.edges[e.Key] = e
		g.edgeOrder = append(g.edgeOrder, e.Key)
	}
	return nil
}
