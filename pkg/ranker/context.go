package ranker

import (
	"regexp"

	"github.com/Decolo/repomap/pkg/models"
)

var (
	contractPathRe  = regexp.MustCompile(`(?i)(api|route|router|controller|handler|schema|contract|dto|migration|openapi|proto)`)
	guardrailPathRe = regexp.MustCompile(`(?i)(test|spec|auth|permission|security|policy|payment|billing|migration)`)
)

// AssembleContext groups ranked output into review buckets. Seeds always
// land in primary; Rank keeps graph-ranked seeds in its output, so only
// seeds absent from the graph get zeroed placeholder entries. The
// non-seed tail feeds causal, contract, and guardrail (overlap allowed).
func AssembleContext(ranked []models.RankedFile, seedFiles []string, topK int) models.ContextBundle {
	if topK <= 0 {
		topK = 20
	}

	seeds := make(map[string]bool, len(seedFiles))
	for _, s := range seedFiles {
		seeds[s] = true
	}

	rankedByPath := make(map[string]models.RankedFile, len(ranked))
	var tail []models.RankedFile
	for _, rf := range ranked {
		rankedByPath[rf.Path] = rf
		if !seeds[rf.Path] {
			tail = append(tail, rf)
		}
	}

	var bundle models.ContextBundle
	for _, seed := range seedFiles {
		if rf, ok := rankedByPath[seed]; ok {
			bundle.Primary = append(bundle.Primary, rf)
			continue
		}
		bundle.Primary = append(bundle.Primary, models.RankedFile{
			Path:    seed,
			Reasons: []string{models.ReasonSeedFile},
		})
	}

	causal := topK
	if causal > len(tail) {
		causal = len(tail)
	}
	bundle.Causal = append(bundle.Causal, tail[:causal]...)

	quota := topK / 2
	if topK%2 != 0 {
		quota++
	}
	if quota < 5 {
		quota = 5
	}
	for _, rf := range tail {
		if len(bundle.Contract) >= quota {
			break
		}
		if contractPathRe.MatchString(rf.Path) {
			bundle.Contract = append(bundle.Contract, rf)
		}
	}
	for _, rf := range tail {
		if len(bundle.Guardrail) >= quota {
			break
		}
		if guardrailPathRe.MatchString(rf.Path) {
			bundle.Guardrail = append(bundle.Guardrail, rf)
		}
	}

	return bundle
}
