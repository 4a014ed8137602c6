// Package vcs provides the git-backed diff source used by incremental
// updates.
package vcs

// DiffSource reports which repository-relative paths changed or were
// deleted for a revision range. Paths are POSIX-normalized. An empty range
// means "the last commit" (HEAD against its first parent).
type DiffSource interface {
	Changed(rootDir, rangeSpec string) ([]string, error)
	Deleted(rootDir, rangeSpec string) ([]string, error)
}

// Default diff source singleton, swappable for tests.
var defaultSource DiffSource = NewGitDiffSource()

// DefaultSource returns the process-wide diff source.
func DefaultSource() DiffSource {
	return defaultSource
}

// SetDefaultSource replaces the process-wide diff source (useful for tests).
func SetDefaultSource(src DiffSource) {
	defaultSource = src
}
