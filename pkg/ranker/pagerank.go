// Package ranker scores files against a seed set using personalized
// PageRank blended with path-risk, boundary, test-gap, and freshness
// signals.
package ranker

import (
	"math"

	"github.com/Decolo/repomap/pkg/graph"
)

const (
	damping       = 0.85
	maxIterations = 100
	tolerance     = 1e-6

	seedWeight    = 1.0
	nonSeedWeight = 0.01
)

// personalizedPageRank runs sparse power iteration over every node in the
// graph. When seeds is non-empty the teleport distribution is weighted
// toward seed file nodes; otherwise it is uniform. Dangling mass follows
// the teleport distribution, so scores stay a proper distribution.
func personalizedPageRank(g *graph.Graph, seeds map[string]bool) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}
	}

	index := make(map[string]int, n)
	for i, node := range nodes {
		index[node.Key] = i
	}

	teleport := make([]float64, n)
	if len(seeds) > 0 {
		total := 0.0
		for i, node := range nodes {
			w := nonSeedWeight
			if node.Attributes.Kind == graph.NodeFile && seeds[node.Attributes.Path] {
				w = seedWeight
			}
			teleport[i] = w
			total += w
		}
		for i := range teleport {
			teleport[i] /= total
		}
	} else {
		uniform := 1.0 / float64(n)
		for i := range teleport {
			teleport[i] = uniform
		}
	}

	outNeighbors := make([][]int, n)
	outDegree := make([]int, n)
	for _, e := range g.Edges() {
		from, fromOK := index[e.Source]
		to, toOK := index[e.Target]
		if !fromOK || !toOK {
			continue
		}
		outNeighbors[from] = append(outNeighbors[from], to)
		outDegree[from]++
	}

	rank := make([]float64, n)
	copy(rank, teleport)
	next := make([]float64, n)

	for iter := 0; iter < maxIterations; iter++ {
		danglingMass := 0.0
		for i := 0; i < n; i++ {
			if outDegree[i] == 0 {
				danglingMass += rank[i]
			}
		}

		for i := range next {
			next[i] = damping*danglingMass*teleport[i] + (1-damping)*teleport[i]
		}
		for i := 0; i < n; i++ {
			if outDegree[i] == 0 {
				continue
			}
			contrib := damping * rank[i] / float64(outDegree[i])
			for _, j := range outNeighbors[i] {
				next[j] += contrib
			}
		}

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		if diff < tolerance {
			break
		}
	}

	result := make(map[string]float64, n)
	for i, node := range nodes {
		result[node.Key] = rank[i]
	}
	return result
}
