package vcs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitDiffSource implements DiffSource with go-git tree diffs.
type GitDiffSource struct{}

// NewGitDiffSource creates a git-backed diff source.
func NewGitDiffSource() *GitDiffSource {
	return &GitDiffSource{}
}

// Changed returns the paths added or modified in the range.
func (s *GitDiffSource) Changed(rootDir, rangeSpec string) ([]string, error) {
	changed, _, err := s.diff(rootDir, rangeSpec)
	return changed, err
}

// Deleted returns the paths removed in the range.
func (s *GitDiffSource) Deleted(rootDir, rangeSpec string) ([]string, error) {
	_, deleted, err := s.diff(rootDir, rangeSpec)
	return deleted, err
}

func (s *GitDiffSource) diff(rootDir, rangeSpec string) (changed, deleted []string, err error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, fmt.Errorf("opening repository at %s: %w", rootDir, err)
	}

	fromRev, toRev := splitRange(rangeSpec)

	toCommit, err := resolveCommit(repo, toRev)
	if err != nil {
		return nil, nil, err
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, nil, err
	}

	var fromTree *object.Tree
	if fromRev != "" {
		fromCommit, err := resolveCommit(repo, fromRev)
		if err != nil {
			return nil, nil, err
		}
		fromTree, err = fromCommit.Tree()
		if err != nil {
			return nil, nil, err
		}
	} else if toCommit.NumParents() > 0 {
		parent, err := toCommit.Parent(0)
		if err != nil {
			return nil, nil, err
		}
		fromTree, err = parent.Tree()
		if err != nil {
			return nil, nil, err
		}
	}

	if fromTree == nil {
		// Root commit: everything in the tree counts as changed.
		err = toTree.Files().ForEach(func(f *object.File) error {
			changed = append(changed, f.Name)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		sort.Strings(changed)
		return changed, nil, nil
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range changes {
		switch {
		case c.To.Name != "":
			changed = append(changed, c.To.Name)
		case c.From.Name != "":
			deleted = append(deleted, c.From.Name)
		}
	}
	sort.Strings(changed)
	sort.Strings(deleted)
	return changed, deleted, nil
}

// splitRange parses "A..B" or "A...B" into endpoints. A bare revision
// diffs that revision against HEAD; empty input diffs HEAD against its
// first parent.
func splitRange(rangeSpec string) (from, to string) {
	if rangeSpec == "" {
		return "", "HEAD"
	}
	if idx := strings.Index(rangeSpec, "..."); idx >= 0 {
		return rangeSpec[:idx], orHead(rangeSpec[idx+3:])
	}
	if idx := strings.Index(rangeSpec, ".."); idx >= 0 {
		return rangeSpec[:idx], orHead(rangeSpec[idx+2:])
	}
	return rangeSpec, "HEAD"
}

func orHead(rev string) string {
	if rev == "" {
		return "HEAD"
	}
	return rev
}

func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return commit, nil
}
