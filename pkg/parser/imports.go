package parser

import (
	"regexp"
	"strings"

	"github.com/Decolo/repomap/pkg/models"
	sitter "github.com/smacker/go-tree-sitter"
)

var importTypeRe = regexp.MustCompile(`^\s*import\s+type\b`)

// extractImports walks the top-level statements of a JS/TS/TSX file and
// produces one binding per imported local name. Re-export declarations
// (export ... from 'x') are extracted with SourceKind re_export; they bind
// no local name but still record the module dependency. CommonJS require()
// is not extracted.
func extractImports(root *sitter.Node, source []byte) []models.ImportBinding {
	var bindings []models.ImportBinding

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			bindings = append(bindings, importStatementBindings(child, source)...)
		case "export_statement":
			bindings = append(bindings, reExportBindings(child, source)...)
		}
	}
	return bindings
}

// importStatementBindings converts one import_statement into bindings.
func importStatementBindings(node *sitter.Node, source []byte) []models.ImportBinding {
	specifier := moduleSpecifier(node, source)
	if specifier == "" {
		return nil
	}

	line := int(node.StartPoint().Row) + 1
	stmtTypeOnly := importTypeRe.MatchString(GetNodeText(node, source))

	var clause *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "import_clause" {
			clause = node.Child(i)
			break
		}
	}

	// import 'x' with no clause binds nothing but still creates a dependency.
	if clause == nil {
		return []models.ImportBinding{{
			LocalName:       models.SideEffectLocalName(specifier),
			ImportedName:    models.ImportedNamespace,
			ModuleSpecifier: specifier,
			IsTypeOnly:      stmtTypeOnly,
			SourceKind:      models.SourceImport,
			Line:            line,
		}}
	}

	var bindings []models.ImportBinding
	add := func(local, imported string, typeOnly bool) {
		bindings = append(bindings, models.ImportBinding{
			LocalName:       local,
			ImportedName:    imported,
			ModuleSpecifier: specifier,
			IsTypeOnly:      stmtTypeOnly || typeOnly,
			SourceKind:      models.SourceImport,
			Line:            line,
		})
	}

	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		switch c.Type() {
		case "identifier":
			// import foo from 'bar'
			add(GetNodeText(c, source), models.ImportedDefault, false)
		case "namespace_import":
			// import * as foo from 'bar'
			for j := 0; j < int(c.ChildCount()); j++ {
				if gc := c.Child(j); gc.Type() == "identifier" {
					add(GetNodeText(gc, source), models.ImportedNamespace, false)
				}
			}
		case "named_imports":
			// import { a, b as c } from 'bar'
			for j := 0; j < int(c.ChildCount()); j++ {
				gc := c.Child(j)
				if gc.Type() != "import_specifier" {
					continue
				}
				name, alias, typeOnly := importSpecifierParts(gc, source)
				if name == "" {
					continue
				}
				local := alias
				if local == "" {
					local = name
				}
				add(local, name, typeOnly)
			}
		}
	}
	return bindings
}

// importSpecifierParts extracts the imported name, optional alias, and the
// per-specifier type-only marker from an import_specifier node.
func importSpecifierParts(node *sitter.Node, source []byte) (name, alias string, typeOnly bool) {
	if n := node.ChildByFieldName("name"); n != nil {
		name = GetNodeText(n, source)
	}
	if a := node.ChildByFieldName("alias"); a != nil {
		alias = GetNodeText(a, source)
	}
	// The grammar exposes the leading `type` keyword as an anonymous token.
	typeOnly = strings.HasPrefix(strings.TrimSpace(GetNodeText(node, source)), "type ")
	return name, alias, typeOnly
}

// reExportBindings handles export_statement nodes that carry a source module
// (export { X } from 'y', export * from 'y'). Plain exports are skipped.
func reExportBindings(node *sitter.Node, source []byte) []models.ImportBinding {
	specifier := moduleSpecifier(node, source)
	if specifier == "" {
		return nil
	}

	line := int(node.StartPoint().Row) + 1
	var bindings []models.ImportBinding
	star := true

	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() != "export_clause" {
			continue
		}
		star = false
		for j := 0; j < int(c.ChildCount()); j++ {
			gc := c.Child(j)
			if gc.Type() != "export_specifier" {
				continue
			}
			name, _, typeOnly := importSpecifierParts(gc, source)
			if name == "" {
				continue
			}
			bindings = append(bindings, models.ImportBinding{
				LocalName:       models.ReExportPrefix + specifier + ":" + name,
				ImportedName:    name,
				ModuleSpecifier: specifier,
				IsTypeOnly:      typeOnly,
				SourceKind:      models.SourceReExport,
				Line:            line,
			})
		}
	}

	if star {
		bindings = append(bindings, models.ImportBinding{
			LocalName:       models.ReExportPrefix + specifier,
			ImportedName:    models.ImportedNamespace,
			ModuleSpecifier: specifier,
			SourceKind:      models.SourceReExport,
			Line:            line,
		})
	}
	return bindings
}

// moduleSpecifier returns the unquoted string literal naming the module, or
// empty when the statement has no source.
func moduleSpecifier(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "string" {
			return unquote(GetNodeText(c, source))
		}
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
