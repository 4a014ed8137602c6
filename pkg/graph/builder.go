package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/Decolo/repomap/pkg/models"
	"github.com/Decolo/repomap/pkg/resolver"
)

// resolveExtensions is the extension fallback order for extension-less
// module specifiers, tried as candidate+ext and then candidate/index+ext.
var resolveExtensions = []string{
	".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".py", ".d.ts",
}

// IsTestPath applies the path heuristic for test files: a path segment of
// test/tests/__tests__ or a filename ending in .test.* or .spec.*.
func IsTestPath(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		switch seg {
		case "test", "tests", "__tests__":
			return true
		}
	}
	base := path.Base(relPath)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec")
}

// definitionEntry indexes one def tag for lookup during edge emission.
type definitionEntry struct {
	File       string
	Name       string
	Line       int
	SymbolType string
	NodeKey    string
}

// resolvedBinding is an import binding after module path resolution. One
// entry exists per (binding, resolved owner file); unresolved bindings keep
// a single entry with Unresolved set.
type resolvedBinding struct {
	OwnerFile    string
	LocalName    string
	ImportedName string
	IsTypeOnly   bool
	SourceKind   models.SourceKind
	Unresolved   bool
	Line         int
}

type builder struct {
	records  map[string]models.FileRecord
	res      *resolver.Resolver
	paths    []string // sorted relPaths
	graph    *Graph
	isTest   map[string]bool
	defsByName        map[string][]definitionEntry
	defsByFileAndName map[string]map[string][]definitionEntry
}

// Build constructs the graph from the authoritative record set. The result
// is a pure function of records and resolver configuration: files are
// processed in sorted path order and edge keys are deterministic.
func Build(records map[string]models.FileRecord, res *resolver.Resolver) *Graph {
	b := &builder{
		records:           records,
		res:               res,
		graph:             New(),
		isTest:            make(map[string]bool, len(records)),
		defsByName:        make(map[string][]definitionEntry),
		defsByFileAndName: make(map[string]map[string][]definitionEntry),
	}
	for p := range records {
		b.paths = append(b.paths, p)
	}
	sort.Strings(b.paths)

	b.addDefinitions()
	resolved := b.resolveImports()
	b.emitEdges(resolved)
	return b.graph
}

// addDefinitions creates file nodes, symbol nodes, and defines edges, and
// fills the two definition indices.
func (b *builder) addDefinitions() {
	for _, relPath := range b.paths {
		rec := b.records[relPath]
		isTest := IsTestPath(relPath)
		b.isTest[relPath] = isTest

		fileKey := FileNodeID(relPath)
		b.graph.AddNode(fileKey, NodeAttrs{
			Kind:     NodeFile,
			Path:     relPath,
			Language: rec.Language,
			IsTest:   isTest,
		})

		for _, tag := range rec.Tags {
			if !tag.IsDef() {
				continue
			}
			symKey := SymbolNodeID(relPath, tag.Name, tag.Line)
			b.graph.AddNode(symKey, NodeAttrs{
				Kind:       NodeSymbol,
				Name:       tag.Name,
				OwnerFile:  relPath,
				Line:       tag.Line,
				SymbolType: tag.Type,
			})
			b.graph.AddEdge(RelationDefines, fileKey, symKey, EdgeAttrs{
				Symbol:     tag.Name,
				Line:       tag.Line,
				OwnerFile:  relPath,
				Confidence: ConfidenceHigh,
				Resolution: ResolutionDefinition,
			})

			entry := definitionEntry{
				File:       relPath,
				Name:       tag.Name,
				Line:       tag.Line,
				SymbolType: tag.Type,
				NodeKey:    symKey,
			}
			b.defsByName[tag.Name] = append(b.defsByName[tag.Name], entry)
			byName := b.defsByFileAndName[relPath]
			if byName == nil {
				byName = make(map[string][]definitionEntry)
				b.defsByFileAndName[relPath] = byName
			}
			byName[tag.Name] = append(byName[tag.Name], entry)
		}
	}
}

// resolveImports translates every import binding into resolved bindings.
func (b *builder) resolveImports() map[string][]resolvedBinding {
	out := make(map[string][]resolvedBinding, len(b.paths))
	for _, relPath := range b.paths {
		rec := b.records[relPath]
		for _, imp := range rec.Imports {
			out[relPath] = append(out[relPath], b.resolveBinding(relPath, imp)...)
		}
	}
	return out
}

// resolveBinding maps one binding's module specifier to indexed files.
func (b *builder) resolveBinding(sourceFile string, imp models.ImportBinding) []resolvedBinding {
	var candidates []string
	if strings.HasPrefix(imp.ModuleSpecifier, ".") {
		candidates = []string{path.Clean(path.Join(path.Dir(sourceFile), imp.ModuleSpecifier))}
	} else {
		candidates = append(candidates, b.res.Resolve(imp.ModuleSpecifier)...)
		candidates = append(candidates, path.Clean(imp.ModuleSpecifier))
	}

	var owners []string
	seen := make(map[string]bool)
	hit := func(p string) {
		if !seen[p] {
			seen[p] = true
			owners = append(owners, p)
		}
	}

	for _, cand := range candidates {
		if path.Ext(cand) != "" {
			if _, ok := b.records[cand]; ok {
				hit(cand)
				continue
			}
		}
		for _, ext := range resolveExtensions {
			if _, ok := b.records[cand+ext]; ok {
				hit(cand + ext)
			}
		}
		for _, ext := range resolveExtensions {
			if _, ok := b.records[cand+"/index"+ext]; ok {
				hit(cand + "/index" + ext)
			}
		}
	}

	if len(owners) == 0 {
		return []resolvedBinding{{
			LocalName:    imp.LocalName,
			ImportedName: imp.ImportedName,
			IsTypeOnly:   imp.IsTypeOnly,
			SourceKind:   imp.SourceKind,
			Unresolved:   true,
			Line:         imp.Line,
		}}
	}

	resolved := make([]resolvedBinding, 0, len(owners))
	for _, owner := range owners {
		resolved = append(resolved, resolvedBinding{
			OwnerFile:    owner,
			LocalName:    imp.LocalName,
			ImportedName: imp.ImportedName,
			IsTypeOnly:   imp.IsTypeOnly,
			SourceKind:   imp.SourceKind,
			Line:         imp.Line,
		})
	}
	return resolved
}

// emitEdges runs the edge emission phase: file-level depends_on from import
// declarations, then per-ref-tag resolution with import-suppresses-fallback.
func (b *builder) emitEdges(resolved map[string][]resolvedBinding) {
	for _, relPath := range b.paths {
		bindings := resolved[relPath]
		fileKey := FileNodeID(relPath)

		// Import declarations link files even when no ref tag uses the name.
		for _, rb := range bindings {
			if rb.Unresolved || rb.OwnerFile == relPath {
				continue
			}
			b.graph.AddEdge(RelationDependsOn, fileKey, FileNodeID(rb.OwnerFile), EdgeAttrs{
				Symbol:      rb.ImportedName,
				LocalSymbol: rb.LocalName,
				Line:        rb.Line,
				OwnerFile:   rb.OwnerFile,
				Confidence:  ConfidenceImportOnly,
				Resolution:  ResolutionImportDeclaration,
			})
		}

		// Re-export bindings never join the local binding map: they bind no
		// local name an identifier could refer to.
		byLocal := make(map[string][]resolvedBinding)
		for _, rb := range bindings {
			if rb.SourceKind == models.SourceReExport {
				continue
			}
			byLocal[rb.LocalName] = append(byLocal[rb.LocalName], rb)
		}

		rec := b.records[relPath]
		for _, tag := range rec.Tags {
			if tag.IsDef() {
				continue
			}
			if bound, ok := byLocal[tag.Name]; ok {
				b.emitImportRef(relPath, fileKey, tag, bound)
				continue
			}
			b.emitFallbackRef(relPath, fileKey, tag)
		}
	}
}

// emitImportRef emits edges for a ref tag that has import bindings. The
// global name-match fallback is suppressed even when nothing resolves.
func (b *builder) emitImportRef(relPath, fileKey string, tag models.Tag, bound []resolvedBinding) {
	for _, rb := range bound {
		if rb.Unresolved {
			continue
		}
		expected := rb.ImportedName
		if expected == models.ImportedDefault {
			expected = tag.Name
		}
		var defs []definitionEntry
		if expected != models.ImportedNamespace {
			defs = b.defsByFileAndName[rb.OwnerFile][expected]
		}

		if len(defs) == 0 {
			if rb.OwnerFile != relPath {
				b.graph.AddEdge(RelationDependsOn, fileKey, FileNodeID(rb.OwnerFile), EdgeAttrs{
					Symbol:      expected,
					LocalSymbol: tag.Name,
					Line:        tag.Line,
					OwnerFile:   rb.OwnerFile,
					Confidence:  ConfidenceImportOnly,
					Resolution:  ResolutionImport,
				})
			}
			continue
		}

		for _, def := range defs {
			attrs := EdgeAttrs{
				Symbol:      def.Name,
				LocalSymbol: tag.Name,
				Line:        tag.Line,
				OwnerFile:   def.File,
				Confidence:  ConfidenceHigh,
				Resolution:  ResolutionImport,
			}
			b.graph.AddEdge(RelationReferences, fileKey, def.NodeKey, attrs)
			if def.File != relPath {
				b.graph.AddEdge(RelationDependsOn, fileKey, FileNodeID(def.File), attrs)
				if b.isTest[relPath] {
					b.graph.AddEdge(RelationTestCovers, fileKey, FileNodeID(def.File), attrs)
				}
			}
		}
	}
}

// emitFallbackRef links a ref tag with no import binding against every
// same-name definition in the index.
func (b *builder) emitFallbackRef(relPath, fileKey string, tag models.Tag) {
	for _, def := range b.defsByName[tag.Name] {
		attrs := EdgeAttrs{
			Symbol:     def.Name,
			Line:       tag.Line,
			OwnerFile:  def.File,
			Confidence: ConfidenceFallback,
			Resolution: ResolutionNameMatch,
		}
		b.graph.AddEdge(RelationReferences, fileKey, def.NodeKey, attrs)
		if def.File != relPath {
			b.graph.AddEdge(RelationDependsOn, fileKey, FileNodeID(def.File), attrs)
			if b.isTest[relPath] {
				b.graph.AddEdge(RelationTestCovers, fileKey, FileNodeID(def.File), attrs)
			}
		}
	}
}
