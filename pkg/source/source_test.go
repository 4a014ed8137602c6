package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decolo/repomap/internal/vcs"
)

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def main():\n    pass\n"), 0o644))

	src := NewFilesystem()

	content, err := src.Read(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "def main")

	_, err = src.Read(filepath.Join(dir, "nonexistent.py"))
	assert.Error(t, err)
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("x = 1\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.py")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	tree, err := vcs.OpenTree(dir, "HEAD")
	require.NoError(t, err)

	src := NewTree(tree)

	content, err := src.Read("main.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))

	_, err = src.Read("missing.py")
	assert.Error(t, err)
}

func TestContentSourceInterfaces(t *testing.T) {
	var _ ContentSource = (*FilesystemSource)(nil)
	var _ ContentSource = (*TreeSource)(nil)
}
