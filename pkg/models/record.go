// Package models defines the data types shared across the indexing and
// ranking pipeline: per-file parse records, ranked output, and context
// buckets.
package models

import "strings"

// TagKind distinguishes definition captures from reference captures.
type TagKind string

const (
	TagDef TagKind = "def"
	TagRef TagKind = "ref"
)

// Tag is a captured identifier occurrence in a source file.
type Tag struct {
	Name string  `json:"name"`
	Kind TagKind `json:"kind"`
	// Type is the grammar-specific capture label (function, class, method, call, ...).
	Type string `json:"type"`
	// Line is 1-based.
	Line int `json:"line"`
}

// IsDef reports whether the tag is a definition capture.
func (t Tag) IsDef() bool {
	return t.Kind == TagDef
}

// Imported-name markers for bindings that do not name a single export.
const (
	ImportedDefault   = "default"
	ImportedNamespace = "*"
)

// SideEffectPrefix marks synthetic local names for bare imports
// (import './setup') that bind nothing but still create a dependency.
const SideEffectPrefix = "__side_effect__:"

// ReExportPrefix marks synthetic local names for star re-exports
// (export * from './x'), which also bind no local name.
const ReExportPrefix = "__reexport__:"

// SideEffectLocalName builds the synthetic local name for a side-effect import.
func SideEffectLocalName(specifier string) string {
	return SideEffectPrefix + specifier
}

// IsSyntheticLocalName reports whether a local name was synthesized for a
// side-effect import or star re-export rather than bound in source.
func IsSyntheticLocalName(name string) bool {
	return strings.HasPrefix(name, SideEffectPrefix) || strings.HasPrefix(name, ReExportPrefix)
}

// SourceKind records which statement form produced an import binding.
type SourceKind string

const (
	SourceImport   SourceKind = "import"
	SourceReExport SourceKind = "re_export"
)

// ImportBinding is a lexical import entry produced by a file.
type ImportBinding struct {
	// LocalName is the name visible in the importing file. Side-effect
	// imports and star re-exports carry a synthetic name instead.
	LocalName string `json:"localName"`
	// ImportedName is "default", "*", or the identifier exported by the
	// target module.
	ImportedName    string     `json:"importedName"`
	ModuleSpecifier string     `json:"moduleSpecifier"`
	IsTypeOnly      bool       `json:"isTypeOnly"`
	SourceKind      SourceKind `json:"sourceKind"`
	Line            int        `json:"line,omitempty"`
}

// FileRecord is the cached parse result for one file, keyed by content hash.
type FileRecord struct {
	Hash     string          `json:"hash"`
	Language string          `json:"language"`
	Tags     []Tag           `json:"tags"`
	Imports  []ImportBinding `json:"imports"`
	// LastParsedAt is an RFC 3339 timestamp. Kept as a string so stale or
	// malformed values degrade freshness scoring instead of failing loads.
	LastParsedAt string `json:"lastParsedAt,omitempty"`
}

// HasImports reports whether the record carries a well-formed imports
// array. Records persisted by older index versions may lack one, in which
// case the file must be re-parsed even on a hash match.
func (r FileRecord) HasImports() bool {
	return r.Imports != nil
}
