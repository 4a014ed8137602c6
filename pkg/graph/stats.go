package graph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats summarizes the graph structure. Connectivity metrics are computed
// over the file-level depends_on projection; counts cover the full
// multigraph.
type Stats struct {
	Files                       int            `json:"files" toon:"files"`
	Symbols                     int            `json:"symbols" toon:"symbols"`
	Edges                       int            `json:"edges" toon:"edges"`
	EdgesByRelation             map[string]int `json:"edgesByRelation" toon:"edgesByRelation"`
	Components                  int            `json:"components" toon:"components"`
	LargestComponent            int            `json:"largestComponent" toon:"largestComponent"`
	StronglyConnectedComponents int            `json:"stronglyConnectedComponents" toon:"stronglyConnectedComponents"`
	Density                     float64        `json:"density" toon:"density"`
	AvgDegree                   float64        `json:"avgDegree" toon:"avgDegree"`
}

// CalculateStats projects the file dependency structure onto gonum simple
// graphs and derives connectivity metrics.
func (g *Graph) CalculateStats() Stats {
	stats := Stats{EdgesByRelation: make(map[string]int)}

	var fileKeys []string
	for _, n := range g.Nodes() {
		switch n.Attributes.Kind {
		case NodeFile:
			stats.Files++
			fileKeys = append(fileKeys, n.Key)
		case NodeSymbol:
			stats.Symbols++
		}
	}

	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	keyToID := make(map[string]int64, len(fileKeys))
	for i, key := range fileKeys {
		id := int64(i)
		keyToID[key] = id
		directed.AddNode(simple.Node(id))
		undirected.AddNode(simple.Node(id))
	}

	depEdges := 0
	for _, e := range g.Edges() {
		stats.Edges++
		stats.EdgesByRelation[string(e.Relation)]++
		if e.Relation != RelationDependsOn {
			continue
		}
		from, fromOK := keyToID[e.Source]
		to, toOK := keyToID[e.Target]
		if !fromOK || !toOK || from == to {
			continue
		}
		if !directed.HasEdgeFromTo(from, to) {
			directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			depEdges++
		}
		if !undirected.HasEdgeBetween(from, to) {
			undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	if stats.Files > 0 {
		components := topo.ConnectedComponents(undirected)
		stats.Components = len(components)
		for _, comp := range components {
			if len(comp) > stats.LargestComponent {
				stats.LargestComponent = len(comp)
			}
		}
		stats.StronglyConnectedComponents = len(topo.TarjanSCC(directed))
		stats.AvgDegree = float64(2*depEdges) / float64(stats.Files)
	}
	if stats.Files > 1 {
		stats.Density = float64(depEdges) / float64(stats.Files*(stats.Files-1))
	}

	return stats
}
