package parser

import (
	"strings"

	"github.com/Decolo/repomap/pkg/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// Result is the output of extracting a single file.
type Result struct {
	Tags    []models.Tag
	Imports []models.ImportBinding
}

// Extract parses source and returns the tags captured by the language's tag
// query plus the file's import bindings. Import bindings are only produced
// for the JavaScript family; Python files link through name matching.
func Extract(source []byte, lang Language) (*Result, error) {
	query, err := tagQuery(lang)
	if err != nil {
		return nil, err
	}

	tree, err := parseTree(source, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	res := &Result{
		Tags: extractTags(query, tree.RootNode(), source),
	}
	if lang != LangPython {
		res.Imports = extractImports(tree.RootNode(), source)
	}
	if res.Imports == nil {
		// Non-nil so persisted records are distinguishable from legacy
		// ones that predate import extraction.
		res.Imports = []models.ImportBinding{}
	}
	return res, nil
}

// extractTags runs the tag query and converts captures into tags. One tag is
// emitted per capture whose name carries a definition or reference prefix.
func extractTags(query *sitter.Query, root *sitter.Node, source []byte) []models.Tag {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var tags []models.Tag
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		for _, cap := range match.Captures {
			capName := query.CaptureNameForId(cap.Index)

			var kind models.TagKind
			var tagType string
			switch {
			case strings.HasPrefix(capName, defCapturePrefix):
				kind = models.TagDef
				tagType = capName[len(defCapturePrefix):]
			case strings.HasPrefix(capName, refCapturePrefix):
				kind = models.TagRef
				tagType = capName[len(refCapturePrefix):]
			default:
				continue
			}

			name := GetNodeText(cap.Node, source)
			if name == "" {
				continue
			}
			tags = append(tags, models.Tag{
				Name: name,
				Kind: kind,
				Type: tagType,
				Line: int(cap.Node.StartPoint().Row) + 1,
			})
		}
	}
	return tags
}
