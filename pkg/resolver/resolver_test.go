package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingConfig(t *testing.T) {
	r, err := Load(t.TempDir(), "tsconfig.json")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestLoadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", "{not json")

	_, err := Load(dir, "tsconfig.json")
	assert.Error(t, err)
}

func TestNilResolverResolvesNothing(t *testing.T) {
	var r *Resolver
	assert.Nil(t, r.Resolve("@app/thing"))
}

func TestResolveRelativeSpecifiersSkipped(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"baseUrl": ".",
			"paths": {"*": ["src/*"]}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)
	assert.Nil(t, r.Resolve("./local"))
	assert.Nil(t, r.Resolve("../up"))
}

func TestResolveWildcardAlias(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"paths": {
				"@app/*": ["src/app/*"],
				"@lib/*": ["src/lib/*", "vendor/lib/*"]
			}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app/models/user"}, r.Resolve("@app/models/user"))
	assert.Equal(t, []string{"src/lib/http", "vendor/lib/http"}, r.Resolve("@lib/http"))
	assert.Nil(t, r.Resolve("@unknown/x"))
}

func TestResolveExactAlias(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"paths": {"config": ["src/config/index.ts"]}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"src/config/index.ts"}, r.Resolve("config"))
	assert.Nil(t, r.Resolve("config/extra"))
}

func TestResolveSpecificityOrder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"paths": {
				"*": ["fallback/*"],
				"@app/*": ["src/app/*"]
			}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	// The longer-affix rule contributes its candidate first.
	got := r.Resolve("@app/widget")
	require.Len(t, got, 2)
	assert.Equal(t, "src/app/widget", got[0])
	assert.Equal(t, "fallback/@app/widget", got[1])
}

func TestResolveBaseURL(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {"baseUrl": "src"}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"src/services/mailer"}, r.Resolve("services/mailer"))
}

func TestResolveBaseURLWithPaths(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"baseUrl": "src",
			"paths": {"@models/*": ["models/*"]}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	// Alias targets are joined against the baseUrl directory, and the bare
	// baseUrl candidate is appended after alias matches.
	got := r.Resolve("@models/user")
	require.Len(t, got, 2)
	assert.Equal(t, "src/models/user", got[0])
	assert.Equal(t, "src/@models/user", got[1])
}

func TestResolveEscapingCandidatesDropped(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.json", `{
		"compilerOptions": {
			"paths": {"@out/*": ["../outside/*"]}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)
	assert.Nil(t, r.Resolve("@out/secret"))
}

func TestExtendsChain(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tsconfig.base.json", `{
		"compilerOptions": {
			"baseUrl": ".",
			"paths": {"@base/*": ["base/*"]}
		}
	}`)
	writeConfig(t, dir, "tsconfig.json", `{
		"extends": "./tsconfig.base",
		"compilerOptions": {
			"paths": {"@app/*": ["src/app/*"]}
		}
	}`)

	r, err := Load(dir, "tsconfig.json")
	require.NoError(t, err)

	// Child paths replace the parent's wholesale; baseUrl is inherited.
	assert.Nil(t, r.Resolve("@base/x"))
	assert.Equal(t, []string{"src/app/x"}, r.Resolve("@app/x"))
	assert.Equal(t, []string{"plain/spec"}, r.Resolve("plain/spec"))
}

func TestExtendsCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.json", `{"extends": "./b", "compilerOptions": {"paths": {"@a/*": ["a/*"]}}}`)
	writeConfig(t, dir, "b.json", `{"extends": "./a"}`)

	r, err := Load(dir, "a.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/x"}, r.Resolve("@a/x"))
}
