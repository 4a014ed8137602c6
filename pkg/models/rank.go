package models

// Features holds the per-file signals blended into the final score.
// Every field is normalized to [0, 1].
type Features struct {
	PageRank       float64 `json:"pagerank" toon:"pagerank"`
	Risk           float64 `json:"risk" toon:"risk"`
	BoundaryImpact float64 `json:"boundary_impact" toon:"boundary_impact"`
	TestGap        float64 `json:"test_gap" toon:"test_gap"`
	Freshness      float64 `json:"freshness" toon:"freshness"`
}

// Reason tags attached to ranked files.
const (
	ReasonHighGraphRelevance = "high-graph-relevance"
	ReasonHighRiskPath       = "high-risk-path"
	ReasonCrossModuleImpact  = "cross-module-impact"
	ReasonTestGapSuspected   = "test-gap-suspected"
	ReasonStaleIndexSignal   = "stale-index-signal"
	ReasonBaselineScore      = "baseline-score"
	ReasonSeedFile           = "seed-file"
)

// RankedFile is one entry of the ranker output.
type RankedFile struct {
	Path     string   `json:"path" toon:"path"`
	Score    float64  `json:"score" toon:"score"`
	Features Features `json:"features" toon:"features"`
	Reasons  []string `json:"reasons" toon:"reasons"`
}

// ContextBundle groups ranked files into review buckets.
// Buckets may overlap: a file can be both causal and contract.
type ContextBundle struct {
	// Primary holds the seed files themselves.
	Primary []RankedFile `json:"primary" toon:"primary"`
	// Causal holds the top-ranked non-seed files.
	Causal []RankedFile `json:"causal" toon:"causal"`
	// Contract holds schema/API-shaped files from the ranked tail.
	Contract []RankedFile `json:"contract" toon:"contract"`
	// Guardrail holds test and sensitive-domain files from the ranked tail.
	Guardrail []RankedFile `json:"guardrail" toon:"guardrail"`
}

// Files returns every bucket entry in bucket order, primary first.
// Entries appearing in multiple buckets are repeated.
func (b ContextBundle) Files() []RankedFile {
	out := make([]RankedFile, 0, len(b.Primary)+len(b.Causal)+len(b.Contract)+len(b.Guardrail))
	out = append(out, b.Primary...)
	out = append(out, b.Causal...)
	out = append(out, b.Contract...)
	out = append(out, b.Guardrail...)
	return out
}
