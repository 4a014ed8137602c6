// Package resolver translates module specifiers into candidate repository
// paths using a tsconfig-style root configuration (baseUrl + paths aliases).
package resolver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// pathRule is a compiled paths alias. Patterns contain at most one '*'.
type pathRule struct {
	pattern     string
	prefix      string
	suffix      string
	hasWildcard bool
	targets     []string
}

// specificity orders rules: longer literal affix wins.
func (r pathRule) specificity() int {
	return len(r.prefix) + len(r.suffix)
}

func (r pathRule) matches(spec string) (wildcard string, ok bool) {
	if !r.hasWildcard {
		return "", spec == r.pattern
	}
	if !strings.HasPrefix(spec, r.prefix) || !strings.HasSuffix(spec, r.suffix) {
		return "", false
	}
	if len(spec) < len(r.prefix)+len(r.suffix) {
		return "", false
	}
	return spec[len(r.prefix) : len(spec)-len(r.suffix)], true
}

// Resolver maps non-relative module specifiers to repository-relative
// candidate paths. A nil or disabled resolver resolves nothing; relative
// imports are handled by the graph builder directly.
type Resolver struct {
	rootDir    string
	baseDir    string // absolute effective base directory
	hasBaseURL bool
	rules      []pathRule
}

// compilerOptions is the subset of tsconfig the resolver consumes.
type compilerOptions struct {
	BaseURL string              `koanf:"baseUrl"`
	Paths   map[string][]string `koanf:"paths"`
}

type tsconfig struct {
	Extends         string          `koanf:"extends"`
	CompilerOptions compilerOptions `koanf:"compilerOptions"`
}

// Load reads the root configuration file and builds a resolver. A missing
// file yields a disabled resolver and no error; a malformed file is an
// error so the caller can warn and continue without alias resolution.
func Load(rootDir, configName string) (*Resolver, error) {
	if configName == "" {
		configName = "tsconfig.json"
	}
	configPath := filepath.Join(rootDir, configName)
	if _, err := os.Stat(configPath); err != nil {
		return nil, nil
	}

	cfg, err := loadConfigChain(configPath, map[string]bool{})
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(configPath)
	r := &Resolver{rootDir: rootDir, baseDir: configDir}
	if cfg.CompilerOptions.BaseURL != "" {
		r.baseDir = filepath.Join(configDir, filepath.FromSlash(cfg.CompilerOptions.BaseURL))
		r.hasBaseURL = true
	}

	for pattern, targets := range cfg.CompilerOptions.Paths {
		rule := pathRule{pattern: pattern, targets: targets}
		if idx := strings.Index(pattern, "*"); idx >= 0 {
			rule.hasWildcard = true
			rule.prefix = pattern[:idx]
			rule.suffix = pattern[idx+1:]
		}
		r.rules = append(r.rules, rule)
	}
	sort.SliceStable(r.rules, func(i, j int) bool {
		si, sj := r.rules[i].specificity(), r.rules[j].specificity()
		if si != sj {
			return si > sj
		}
		return r.rules[i].pattern < r.rules[j].pattern
	})

	return r, nil
}

// loadConfigChain loads a config file and merges its extends chain,
// child values winning over parent values.
func loadConfigChain(configPath string, seen map[string]bool) (*tsconfig, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	if seen[abs] {
		return &tsconfig{}, nil
	}
	seen[abs] = true

	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("loading %s: %w", configPath, err)
	}

	var cfg tsconfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", configPath, err)
	}

	if cfg.Extends == "" {
		return &cfg, nil
	}

	parentPath := cfg.Extends
	if !strings.HasSuffix(parentPath, ".json") {
		parentPath += ".json"
	}
	if !filepath.IsAbs(parentPath) {
		parentPath = filepath.Join(filepath.Dir(configPath), filepath.FromSlash(parentPath))
	}
	parent, err := loadConfigChain(parentPath, seen)
	if err != nil {
		return nil, err
	}

	merged := *parent
	merged.Extends = ""
	if cfg.CompilerOptions.BaseURL != "" {
		merged.CompilerOptions.BaseURL = cfg.CompilerOptions.BaseURL
	}
	if cfg.CompilerOptions.Paths != nil {
		merged.CompilerOptions.Paths = cfg.CompilerOptions.Paths
	}
	return &merged, nil
}

// Resolve returns candidate repository-relative POSIX paths for a module
// specifier. Relative specifiers return nil (handled by the caller), and
// candidates are not checked for existence.
func (r *Resolver) Resolve(moduleSpecifier string) []string {
	if r == nil || moduleSpecifier == "" {
		return nil
	}
	if strings.HasPrefix(moduleSpecifier, ".") {
		return nil
	}

	var candidates []string
	seen := make(map[string]bool)
	add := func(abs string) {
		rel, err := filepath.Rel(r.rootDir, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return
		}
		posix := path.Clean(filepath.ToSlash(rel))
		if !seen[posix] {
			seen[posix] = true
			candidates = append(candidates, posix)
		}
	}

	for _, rule := range r.rules {
		wildcard, ok := rule.matches(moduleSpecifier)
		if !ok {
			continue
		}
		for _, target := range rule.targets {
			expanded := target
			if rule.hasWildcard {
				expanded = strings.Replace(target, "*", wildcard, 1)
			}
			add(filepath.Join(r.baseDir, filepath.FromSlash(expanded)))
		}
	}

	if r.hasBaseURL {
		add(filepath.Join(r.baseDir, filepath.FromSlash(moduleSpecifier)))
	}

	return candidates
}
