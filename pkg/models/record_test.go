package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagIsDef(t *testing.T) {
	assert.True(t, Tag{Kind: TagDef}.IsDef())
	assert.False(t, Tag{Kind: TagRef}.IsDef())
}

func TestSyntheticLocalNames(t *testing.T) {
	side := SideEffectLocalName("./setup")
	assert.Equal(t, "__side_effect__:./setup", side)
	assert.True(t, IsSyntheticLocalName(side))
	assert.True(t, IsSyntheticLocalName(ReExportPrefix+"./x"))
	assert.False(t, IsSyntheticLocalName("useState"))
	assert.False(t, IsSyntheticLocalName("default"))
}

func TestFileRecordHasImports(t *testing.T) {
	assert.False(t, FileRecord{}.HasImports())
	assert.True(t, FileRecord{Imports: []ImportBinding{}}.HasImports())
	assert.True(t, FileRecord{Imports: []ImportBinding{{LocalName: "x"}}}.HasImports())
}

func TestContextBundleFiles(t *testing.T) {
	b := ContextBundle{
		Primary:   []RankedFile{{Path: "seed.ts"}},
		Causal:    []RankedFile{{Path: "a.ts"}, {Path: "b.ts"}},
		Contract:  []RankedFile{{Path: "api.ts"}},
		Guardrail: []RankedFile{{Path: "a.ts"}},
	}

	paths := make([]string, 0)
	for _, f := range b.Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"seed.ts", "a.ts", "b.ts", "api.ts", "a.ts"}, paths,
		"bucket order with duplicates preserved")

	assert.Empty(t, ContextBundle{}.Files())
}
