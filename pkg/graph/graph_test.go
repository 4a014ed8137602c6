package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New()
	g.AddNode("file:a.py", NodeAttrs{Kind: NodeFile, Path: "a.py"})
	g.AddNode("file:a.py", NodeAttrs{Kind: NodeFile, Path: "overwritten"})

	require.Equal(t, 1, g.NodeCount())
	n, ok := g.NodeByKey("file:a.py")
	require.True(t, ok)
	assert.Equal(t, "a.py", n.Attributes.Path, "re-adding must not overwrite")
}

func TestAddEdgeDedup(t *testing.T) {
	g := New()
	g.AddNode("file:a.py", NodeAttrs{Kind: NodeFile, Path: "a.py"})
	g.AddNode("file:b.py", NodeAttrs{Kind: NodeFile, Path: "b.py"})

	attrs := EdgeAttrs{Symbol: "x", Line: 3, OwnerFile: "b.py", Confidence: ConfidenceHigh, Resolution: ResolutionImport}
	assert.True(t, g.AddEdge(RelationDependsOn, "file:a.py", "file:b.py", attrs))
	assert.False(t, g.AddEdge(RelationDependsOn, "file:a.py", "file:b.py", attrs))
	require.Equal(t, 1, g.EdgeCount())

	// A different line salts a different key.
	attrs.Line = 4
	assert.True(t, g.AddEdge(RelationDependsOn, "file:a.py", "file:b.py", attrs))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestSymbolNodeIDEscaping(t *testing.T) {
	id := SymbolNodeID("src/weird name.py", "fn:colon", 7)
	parts := strings.Split(id, ":")
	assert.Len(t, parts, 4, "escaping must keep the id splittable on ':'")
	assert.Equal(t, "sym", parts[0])
	assert.Equal(t, "7", parts[3])
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g := New()
	g.AddNode("file:a.py", NodeAttrs{Kind: NodeFile, Path: "a.py", Language: "python"})
	g.AddNode(SymbolNodeID("a.py", "run", 1), NodeAttrs{
		Kind: NodeSymbol, Name: "run", OwnerFile: "a.py", Line: 1, SymbolType: "function",
	})
	g.AddEdge(RelationDefines, "file:a.py", SymbolNodeID("a.py", "run", 1), EdgeAttrs{
		Symbol: "run", Line: 1, OwnerFile: "a.py",
		Confidence: ConfidenceHigh, Resolution: ResolutionDefinition,
	})

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var loaded Graph
	require.NoError(t, json.Unmarshal(data, &loaded))

	assert.Equal(t, g.Fingerprint(), loaded.Fingerprint())
	assert.Equal(t, g.NodeCount(), loaded.NodeCount())
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())

	// A second marshal of the loaded graph is byte-identical.
	data2, err := json.Marshal(&loaded)
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestFingerprintIgnoresInsertionOrder(t *testing.T) {
	g1 := New()
	g1.AddNode("file:a.py", NodeAttrs{Kind: NodeFile})
	g1.AddNode("file:b.py", NodeAttrs{Kind: NodeFile})

	g2 := New()
	g2.AddNode("file:b.py", NodeAttrs{Kind: NodeFile})
	g2.AddNode("file:a.py", NodeAttrs{Kind: NodeFile})

	assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())
}

func TestToMermaid(t *testing.T) {
	g := New()
	g.AddNode("file:src/a.ts", NodeAttrs{Kind: NodeFile, Path: "src/a.ts"})
	g.AddNode("file:src/b.ts", NodeAttrs{Kind: NodeFile, Path: "src/b.ts"})
	g.AddNode(SymbolNodeID("src/b.ts", "x", 1), NodeAttrs{Kind: NodeSymbol, Name: "x"})
	g.AddEdge(RelationDependsOn, "file:src/a.ts", "file:src/b.ts", EdgeAttrs{
		Symbol: "x", OwnerFile: "src/b.ts", Confidence: ConfidenceHigh, Resolution: ResolutionImport,
	})
	g.AddEdge(RelationDefines, "file:src/b.ts", SymbolNodeID("src/b.ts", "x", 1), EdgeAttrs{
		Symbol: "x", OwnerFile: "src/b.ts", Confidence: ConfidenceHigh, Resolution: ResolutionDefinition,
	})

	out := g.ToMermaid(0, 0)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `["src/a.ts"]`)
	assert.Contains(t, out, " --> ")
	assert.NotContains(t, out, "sym_", "symbol nodes stay out of the file diagram")

	// Caps apply.
	capped := g.ToMermaid(1, 0)
	assert.NotContains(t, capped, "src/b.ts")
}

func TestCalculateStats(t *testing.T) {
	g := New()
	g.AddNode("file:a.py", NodeAttrs{Kind: NodeFile, Path: "a.py"})
	g.AddNode("file:b.py", NodeAttrs{Kind: NodeFile, Path: "b.py"})
	g.AddNode("file:c.py", NodeAttrs{Kind: NodeFile, Path: "c.py"})
	g.AddNode(SymbolNodeID("a.py", "f", 1), NodeAttrs{Kind: NodeSymbol, Name: "f"})

	dep := func(from, to string, line int) {
		g.AddEdge(RelationDependsOn, "file:"+from, "file:"+to, EdgeAttrs{
			Symbol: "f", Line: line, OwnerFile: to,
			Confidence: ConfidenceHigh, Resolution: ResolutionImport,
		})
	}
	// a <-> b cycle, c isolated.
	dep("a.py", "b.py", 1)
	dep("b.py", "a.py", 2)

	stats := g.CalculateStats()
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Symbols)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 2, stats.EdgesByRelation["depends_on"])
	assert.Equal(t, 2, stats.Components)
	assert.Equal(t, 2, stats.LargestComponent)
	// a+b collapse into one SCC, c is its own.
	assert.Equal(t, 2, stats.StronglyConnectedComponents)
	assert.InDelta(t, 2.0/6.0, stats.Density, 1e-9)
	assert.InDelta(t, 4.0/3.0, stats.AvgDegree, 1e-9)
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := New().CalculateStats()
	assert.Zero(t, stats.Files)
	assert.Zero(t, stats.Density)
}
