package ranker

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/Decolo/repomap/pkg/graph"
	"github.com/Decolo/repomap/pkg/models"
)

// Score weights, applied to the normalized features.
const (
	weightPageRank  = 0.45
	weightRisk      = 0.25
	weightBoundary  = 0.15
	weightTestGap   = 0.10
	weightFreshness = 0.05
)

// boundaryScale is the neighbor count that saturates boundary impact.
const boundaryScale = 12.0

const oneWeek = 7 * 24 * time.Hour

var riskRules = []struct {
	re    *regexp.Regexp
	score float64
}{
	{regexp.MustCompile(`auth|permission|acl|policy|security`), 1.0},
	{regexp.MustCompile(`payment|billing|invoice|money|wallet`), 0.95},
	{regexp.MustCompile(`migration|schema|db|database|sql|model`), 0.85},
	{regexp.MustCompile(`api|route|controller|handler`), 0.7},
	{regexp.MustCompile(`test|spec`), 0.25},
}

const defaultRisk = 0.45

var testPathRe = regexp.MustCompile(`test|spec`)

// Options configures ranking.
type Options struct {
	// TopK limits the output length; <= 0 means 20.
	TopK int
	// Now anchors freshness decay; zero means time.Now().
	Now time.Time
}

// Rank scores every file node against the seed set and returns the top-K
// ranked files, ordered by score descending then path ascending. Seeds
// present in the graph are always included, even when ranked below the
// cut.
func Rank(g *graph.Graph, records map[string]models.FileRecord, seedFiles []string, opts Options) []models.RankedFile {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	seeds := make(map[string]bool, len(seedFiles))
	for _, s := range seedFiles {
		seeds[s] = true
	}

	pr := personalizedPageRank(g, seeds)
	fileNodes := g.FileNodes()
	if len(fileNodes) == 0 {
		return nil
	}

	pprNorm := normalizePageRank(fileNodes, pr)
	neighbors := fileNeighborCounts(g, fileNodes)
	covered := coveredFiles(g)

	ranked := make([]models.RankedFile, 0, len(fileNodes))
	for _, node := range fileNodes {
		path := node.Attributes.Path
		f := models.Features{
			PageRank:       pprNorm[node.Key],
			Risk:           riskScore(path),
			BoundaryImpact: clamp01(float64(neighbors[node.Key]) / boundaryScale),
			TestGap:        testGapScore(path, covered[node.Key]),
			Freshness:      freshnessScore(records[path].LastParsedAt, now),
		}
		score := weightPageRank*f.PageRank +
			weightRisk*f.Risk +
			weightBoundary*f.BoundaryImpact +
			weightTestGap*f.TestGap +
			weightFreshness*f.Freshness

		ranked = append(ranked, models.RankedFile{
			Path:     path,
			Score:    score,
			Features: f,
			Reasons:  reasons(f),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > opts.TopK {
		cut := ranked[opts.TopK:]
		ranked = ranked[:opts.TopK:opts.TopK]
		// A seed ranked below the cut stays in the output with its real
		// features; only seeds absent from the graph get zeroed entries.
		for _, rf := range cut {
			if seeds[rf.Path] {
				ranked = append(ranked, rf)
			}
		}
	}
	return ranked
}

// normalizePageRank min-max normalizes PageRank over file nodes. When all
// values are equal every file gets 0.5.
func normalizePageRank(fileNodes []graph.Node, pr map[string]float64) map[string]float64 {
	minV, maxV := math.MaxFloat64, -math.MaxFloat64
	for _, n := range fileNodes {
		v := pr[n.Key]
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	out := make(map[string]float64, len(fileNodes))
	if maxV-minV < 1e-15 {
		for _, n := range fileNodes {
			out[n.Key] = 0.5
		}
		return out
	}
	for _, n := range fileNodes {
		out[n.Key] = (pr[n.Key] - minV) / (maxV - minV)
	}
	return out
}

// fileNeighborCounts counts unique file-node neighbors per file node over
// any in- or out-edge. File keys are interned to uint32 so the per-node
// neighbor sets are cheap roaring bitmaps.
func fileNeighborCounts(g *graph.Graph, fileNodes []graph.Node) map[string]int {
	ids := make(map[string]uint32, len(fileNodes))
	for i, n := range fileNodes {
		ids[n.Key] = uint32(i)
	}

	sets := make(map[string]*roaring.Bitmap, len(fileNodes))
	add := func(key string, neighbor uint32) {
		bm := sets[key]
		if bm == nil {
			bm = roaring.New()
			sets[key] = bm
		}
		bm.Add(neighbor)
	}

	for _, e := range g.Edges() {
		srcID, srcIsFile := ids[e.Source]
		tgtID, tgtIsFile := ids[e.Target]
		if !srcIsFile || !tgtIsFile || e.Source == e.Target {
			continue
		}
		add(e.Source, tgtID)
		add(e.Target, srcID)
	}

	counts := make(map[string]int, len(sets))
	for key, bm := range sets {
		counts[key] = int(bm.GetCardinality())
	}
	return counts
}

// coveredFiles marks file nodes with an incoming test_covers edge.
func coveredFiles(g *graph.Graph) map[string]bool {
	covered := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.Relation == graph.RelationTestCovers {
			covered[e.Target] = true
		}
	}
	return covered
}

// riskScore applies the path risk cascade; first match wins.
func riskScore(path string) float64 {
	lower := strings.ToLower(path)
	for _, rule := range riskRules {
		if rule.re.MatchString(lower) {
			return rule.score
		}
	}
	return defaultRisk
}

func testGapScore(path string, hasCoverage bool) float64 {
	if testPathRe.MatchString(strings.ToLower(path)) {
		return 0.2
	}
	if hasCoverage {
		return 0.1
	}
	return 0.9
}

// freshnessScore decays over one week from lastParsedAt. Missing timestamps
// score 0; malformed ones score 0.4.
func freshnessScore(lastParsedAt string, now time.Time) float64 {
	if lastParsedAt == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, lastParsedAt)
	if err != nil {
		return 0.4
	}
	age := now.Sub(t)
	return clamp01(1 - float64(age)/float64(oneWeek))
}

// reasons attaches explanation tags based on feature thresholds.
func reasons(f models.Features) []string {
	var out []string
	if f.PageRank >= 0.7 {
		out = append(out, models.ReasonHighGraphRelevance)
	}
	if f.Risk >= 0.8 {
		out = append(out, models.ReasonHighRiskPath)
	}
	if f.BoundaryImpact >= 0.6 {
		out = append(out, models.ReasonCrossModuleImpact)
	}
	if f.TestGap >= 0.7 {
		out = append(out, models.ReasonTestGapSuspected)
	}
	if f.Freshness <= 0.3 {
		out = append(out, models.ReasonStaleIndexSignal)
	}
	if len(out) == 0 {
		out = append(out, models.ReasonBaselineScore)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
