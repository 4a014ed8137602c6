package parser

import (
	"embed"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFS embed.FS

// Capture name prefixes recognized by the tag extractor.
const (
	defCapturePrefix = "name.definition."
	refCapturePrefix = "name.reference."
)

// fallbackQueries are the minimal built-in queries used when the embedded
// query fails to compile against the linked grammar (classes, functions,
// methods, and calls only).
var fallbackQueries = map[Language]string{
	LangPython: `
(class_definition name: (identifier) @name.definition.class)
(function_definition name: (identifier) @name.definition.function)
(call function: (identifier) @name.reference.call)
`,
	LangJavaScript: `
(class_declaration name: (identifier) @name.definition.class)
(function_declaration name: (identifier) @name.definition.function)
(method_definition name: (property_identifier) @name.definition.method)
(call_expression function: (identifier) @name.reference.call)
`,
	LangTypeScript: `
(class_declaration name: (type_identifier) @name.definition.class)
(function_declaration name: (identifier) @name.definition.function)
(method_definition name: (property_identifier) @name.definition.method)
(call_expression function: (identifier) @name.reference.call)
`,
	LangTSX: `
(class_declaration name: (type_identifier) @name.definition.class)
(function_declaration name: (identifier) @name.definition.function)
(method_definition name: (property_identifier) @name.definition.method)
(call_expression function: (identifier) @name.reference.call)
`,
}

type compiledQuery struct {
	once  sync.Once
	query *sitter.Query
	err   error
}

var (
	queryCache   = map[Language]*compiledQuery{}
	queryCacheMu sync.Mutex

	fallbackWarned   = map[Language]bool{}
	fallbackWarnedMu sync.Mutex
)

// tagQuery returns the compiled tag query for a language. The query is
// compiled once per process and shared; compiled queries are safe for
// concurrent use with per-goroutine cursors.
func tagQuery(lang Language) (*sitter.Query, error) {
	queryCacheMu.Lock()
	cq, ok := queryCache[lang]
	if !ok {
		cq = &compiledQuery{}
		queryCache[lang] = cq
	}
	queryCacheMu.Unlock()

	cq.once.Do(func() {
		cq.query, cq.err = compileTagQuery(lang)
	})
	return cq.query, cq.err
}

func compileTagQuery(lang Language) (*sitter.Query, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	src, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", lang))
	if err == nil {
		q, qerr := sitter.NewQuery(src, tsLang)
		if qerr == nil {
			return q, nil
		}
		warnFallback(lang, qerr)
	} else {
		warnFallback(lang, err)
	}

	fb, ok := fallbackQueries[lang]
	if !ok {
		return nil, fmt.Errorf("no tag query for language %s", lang)
	}
	q, qerr := sitter.NewQuery([]byte(fb), tsLang)
	if qerr != nil {
		return nil, fmt.Errorf("compiling fallback query for %s: %w", lang, qerr)
	}
	return q, nil
}

// warnFallback emits a single warning per language per process.
func warnFallback(lang Language, cause error) {
	fallbackWarnedMu.Lock()
	defer fallbackWarnedMu.Unlock()
	if fallbackWarned[lang] {
		return
	}
	fallbackWarned[lang] = true
	fmt.Fprintf(os.Stderr, "warning: tag query for %s rejected (%v), using built-in fallback\n", lang, cause)
}
