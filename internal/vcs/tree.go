package vcs

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Tree reads file content from a committed git tree.
type Tree interface {
	// File returns the content of the file at the repository-relative path.
	File(path string) ([]byte, error)
}

type gitTree struct {
	tree *object.Tree
}

// OpenTree resolves a revision in the repository at rootDir and returns a
// reader over its tree.
func OpenTree(rootDir, rev string) (Tree, error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", rootDir, err)
	}
	commit, err := resolveCommit(repo, orHead(rev))
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	return &gitTree{tree: tree}, nil
}

// File implements Tree.
func (t *gitTree) File(path string) ([]byte, error) {
	f, err := t.tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s from tree: %w", path, err)
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}
