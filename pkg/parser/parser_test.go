package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decolo/repomap/pkg/models"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.py", LangPython},
		{"types.pyi", LangPython},
		{"script.pyw", LangPython},
		{"app.ts", LangTypeScript},
		{"app.mts", LangTypeScript},
		{"app.cts", LangTypeScript},
		{"view.tsx", LangTSX},
		{"view.jsx", LangTSX},
		{"index.js", LangJavaScript},
		{"index.mjs", LangJavaScript},
		{"index.cjs", LangJavaScript},
		{"deep/nested/path.TS", LangTypeScript},
		{"README.md", LangUnknown},
		{"Makefile", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestSupported(t *testing.T) {
	langs := Supported()
	assert.Len(t, langs, 4)
	for _, lang := range langs {
		_, err := GetTreeSitterLanguage(lang)
		assert.NoError(t, err)
	}
	_, err := GetTreeSitterLanguage(LangUnknown)
	assert.Error(t, err)
}

// findTag returns the first tag with the given name and kind.
func findTag(tags []models.Tag, name string, kind models.TagKind) (models.Tag, bool) {
	for _, tag := range tags {
		if tag.Name == name && tag.Kind == kind {
			return tag, true
		}
	}
	return models.Tag{}, false
}

func TestExtractPython(t *testing.T) {
	source := []byte(`class Greeter:
    def greet(self):
        return format_name(self.name)

def format_name(name):
    return name.strip()

g = Greeter()
g.greet()
`)

	res, err := Extract(source, LangPython)
	require.NoError(t, err)

	cls, ok := findTag(res.Tags, "Greeter", models.TagDef)
	require.True(t, ok, "missing class definition")
	assert.Equal(t, "class", cls.Type)
	assert.Equal(t, 1, cls.Line)

	fn, ok := findTag(res.Tags, "format_name", models.TagDef)
	require.True(t, ok, "missing function definition")
	assert.Equal(t, "function", fn.Type)
	assert.Equal(t, 5, fn.Line)

	method, ok := findTag(res.Tags, "greet", models.TagDef)
	require.True(t, ok, "missing method definition")
	assert.Equal(t, 2, method.Line)

	_, ok = findTag(res.Tags, "format_name", models.TagRef)
	assert.True(t, ok, "missing call reference")
	_, ok = findTag(res.Tags, "strip", models.TagRef)
	assert.True(t, ok, "missing attribute call reference")

	assert.Empty(t, res.Imports, "python files carry no import bindings")
}

func TestExtractTypeScript(t *testing.T) {
	source := []byte(`interface Shape {
  area(): number
}

type Dimensions = { w: number; h: number }

enum Color { Red, Green }

class Circle {
  constructor(private r: number) {}
  area(): number { return 3.14 * this.r * this.r }
}

function describe(s: Shape): string {
  return String(s.area())
}

const shortHand = (d: Dimensions) => d.w * d.h

const c = new Circle(2)
describe(c)
`)

	res, err := Extract(source, LangTypeScript)
	require.NoError(t, err)

	for _, want := range []struct {
		name, typ string
	}{
		{"Shape", "interface"},
		{"Dimensions", "type"},
		{"Color", "enum"},
		{"Circle", "class"},
		{"describe", "function"},
		{"shortHand", "function"},
	} {
		tag, ok := findTag(res.Tags, want.name, models.TagDef)
		require.True(t, ok, "missing definition %s", want.name)
		assert.Equal(t, want.typ, tag.Type, "definition %s", want.name)
	}

	ref, ok := findTag(res.Tags, "describe", models.TagRef)
	require.True(t, ok, "missing call reference")
	assert.Equal(t, "call", ref.Type)

	newRef, ok := findTag(res.Tags, "Circle", models.TagRef)
	require.True(t, ok, "missing new-expression reference")
	assert.Equal(t, "class", newRef.Type)

	_, ok = findTag(res.Tags, "Shape", models.TagRef)
	assert.True(t, ok, "missing type annotation reference")
}

func TestExtractTSX(t *testing.T) {
	source := []byte(`import { useState } from 'react'

export function Counter() {
  const [count, setCount] = useState(0)
  return <button onClick={() => setCount(count + 1)}>{count}</button>
}
`)

	res, err := Extract(source, LangTSX)
	require.NoError(t, err)

	_, ok := findTag(res.Tags, "Counter", models.TagDef)
	assert.True(t, ok, "missing component definition")
	_, ok = findTag(res.Tags, "useState", models.TagRef)
	assert.True(t, ok, "missing hook call reference")

	require.Len(t, res.Imports, 1)
	assert.Equal(t, "useState", res.Imports[0].LocalName)
	assert.Equal(t, "react", res.Imports[0].ModuleSpecifier)
}

func TestExtractImports(t *testing.T) {
	source := []byte(`import def from './a'
import * as ns from './b'
import { x, y as z } from './c'
import type { T } from './d'
import { type U, v } from './e'
import './f'
export { a } from './g'
export * from './h'
export const local = 1
`)

	res, err := Extract(source, LangTypeScript)
	require.NoError(t, err)

	byLocal := make(map[string]models.ImportBinding)
	for _, b := range res.Imports {
		byLocal[b.LocalName] = b
	}

	def := byLocal["def"]
	assert.Equal(t, models.ImportedDefault, def.ImportedName)
	assert.Equal(t, "./a", def.ModuleSpecifier)
	assert.Equal(t, 1, def.Line)

	ns := byLocal["ns"]
	assert.Equal(t, models.ImportedNamespace, ns.ImportedName)
	assert.Equal(t, "./b", ns.ModuleSpecifier)

	x := byLocal["x"]
	assert.Equal(t, "x", x.ImportedName)
	assert.False(t, x.IsTypeOnly)

	z := byLocal["z"]
	assert.Equal(t, "y", z.ImportedName, "alias binds the local name to the exported name")

	typ := byLocal["T"]
	assert.True(t, typ.IsTypeOnly, "import type statement marks all bindings type-only")

	u := byLocal["U"]
	assert.True(t, u.IsTypeOnly, "inline type specifier is type-only")
	v := byLocal["v"]
	assert.False(t, v.IsTypeOnly)

	side := byLocal[models.SideEffectLocalName("./f")]
	assert.Equal(t, models.ImportedNamespace, side.ImportedName)
	assert.Equal(t, "./f", side.ModuleSpecifier)

	var reExports []models.ImportBinding
	for _, b := range res.Imports {
		if b.SourceKind == models.SourceReExport {
			reExports = append(reExports, b)
		}
	}
	require.Len(t, reExports, 2)
	specs := []string{reExports[0].ModuleSpecifier, reExports[1].ModuleSpecifier}
	assert.ElementsMatch(t, []string{"./g", "./h"}, specs)

	// export const local = 1 has no source module, so no binding.
	for _, b := range res.Imports {
		assert.NotEqual(t, "local", b.LocalName)
	}
}

func TestExtractJavaScriptNoRequire(t *testing.T) {
	source := []byte(`const fs = require('fs')
import path from 'path'

function main() {
  return path.join('a', 'b')
}
`)

	res, err := Extract(source, LangJavaScript)
	require.NoError(t, err)

	require.Len(t, res.Imports, 1, "require() is not an import binding")
	assert.Equal(t, "path", res.Imports[0].LocalName)
}

func TestExtractEmptySource(t *testing.T) {
	for _, lang := range Supported() {
		res, err := Extract(nil, lang)
		require.NoError(t, err, "language %s", lang)
		assert.Empty(t, res.Tags)
		assert.Empty(t, res.Imports)
	}
}

func TestGetNodeTextBounds(t *testing.T) {
	assert.Equal(t, "", GetNodeText(nil, []byte("x")))
}
