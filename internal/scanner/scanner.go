// Package scanner enumerates the source files under a repository root.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Decolo/repomap/pkg/config"
	"github.com/Decolo/repomap/pkg/parser"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// SourceFile is one discovered source unit.
type SourceFile struct {
	AbsPath  string
	RelPath  string // repository-relative, POSIX separators
	Language parser.Language
}

// defaultExcludeDirs are always skipped regardless of configuration.
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".repomap":     true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".next":        true,
	".cache":       true,
}

// Scanner finds source files in a directory tree.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a scanner. A nil config uses defaults.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot walks up from start looking for a .git directory.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config globs with the repository's
// .gitignore files, both parsed as gitignore patterns.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = []gitignore.Matcher{gitignore.NewMatcher(patterns)}
	}
}

func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	parts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// Scan enumerates all supported source files below root, sorted by RelPath.
// Symlinks that escape the root are skipped; file content is not read.
func (s *Scanner) Scan(root string) ([]SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	var files []SourceFile
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, _ := filepath.Rel(absRoot, path)
		if relPath == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if defaultExcludeDirs[d.Name()] || s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		lang := parser.DetectLanguage(path)
		if lang == parser.LangUnknown {
			return nil
		}

		files = append(files, SourceFile{
			AbsPath:  path,
			RelPath:  filepath.ToSlash(relPath),
			Language: lang,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// isWithinRoot reports whether path is contained within root.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
