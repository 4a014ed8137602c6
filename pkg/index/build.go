package index

import (
	"path/filepath"
	"time"

	"github.com/Decolo/repomap/internal/fileproc"
	"github.com/Decolo/repomap/internal/scanner"
	"github.com/Decolo/repomap/pkg/config"
	"github.com/Decolo/repomap/pkg/graph"
	"github.com/Decolo/repomap/pkg/models"
	"github.com/Decolo/repomap/pkg/parser"
	"github.com/Decolo/repomap/pkg/resolver"
	"github.com/Decolo/repomap/pkg/source"
)

// Options configures index construction.
type Options struct {
	// Config overrides the configuration loaded from the repository root.
	Config *config.Config
	// Source overrides where file content is read from (default: filesystem).
	Source source.ContentSource
	// OnProgress is called once per processed file.
	OnProgress fileproc.ProgressFunc
	// Now overrides the clock (useful for tests).
	Now func() time.Time
	// SkipPersist keeps the result in memory without writing the index
	// directory.
	SkipPersist bool
}

func (o *Options) fill(root string) {
	if o.Config == nil {
		o.Config = config.LoadOrDefault(root)
	}
	if o.Source == nil {
		o.Source = source.NewFilesystem()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result is the outcome of a build or update.
type Result struct {
	State *State
	Graph *graph.Graph

	TotalFiles   int
	ParsedFiles  int
	ReusedFiles  int
	RemovedFiles int

	// GraphChanged reports whether the graph fingerprint differs from the
	// previously persisted graph. Full builds always set it.
	GraphChanged bool

	// Errors collects per-file read/parse failures. A failed file keeps
	// its previous record when one exists; without one it is left out of
	// the state. Failures never abort the build.
	Errors *fileproc.ProcessingErrors
}

// IndexDir returns the index directory for a repository root.
func IndexDir(root string, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return filepath.Join(root, cfg.Index.Dir)
}

// Build constructs the index from scratch: discover files, parse (reusing
// hash-matched records from any previous state), derive the graph, and
// persist both under the index directory.
func Build(root string, opts Options) (*Result, error) {
	opts.fill(root)

	files, err := scanner.New(opts.Config).Scan(root)
	if err != nil {
		return nil, err
	}

	indexDir := IndexDir(root, opts.Config)
	prev, err := LoadState(indexDir)
	if err != nil {
		// A corrupt previous state must not block a rebuild.
		prev = nil
	}
	var prevFiles map[string]models.FileRecord
	if prev != nil {
		prevFiles = prev.Files
	}

	res, err := processFiles(root, files, prevFiles, opts)
	if err != nil {
		return nil, err
	}
	res.GraphChanged = true
	if !opts.SkipPersist {
		if err := persist(indexDir, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type parsedFile struct {
	rel    string
	rec    models.FileRecord
	reused bool
}

// processFiles reads and parses the given files, reusing previous records
// whose content hash is unchanged, then derives the graph from the merged
// record set.
func processFiles(root string, files []scanner.SourceFile, prevFiles map[string]models.FileRecord, opts Options) (*Result, error) {
	now := opts.Now().UTC().Format(time.RFC3339)

	parsed, procErrs := fileproc.MapN(files, opts.Config.Index.Workers,
		func(sf scanner.SourceFile) string { return sf.RelPath },
		func(sf scanner.SourceFile) (parsedFile, error) {
			content, err := opts.Source.Read(sf.AbsPath)
			if err != nil {
				return parsedFile{}, err
			}
			hash := HashBytes(content)

			if prev, ok := prevFiles[sf.RelPath]; ok && prev.Hash == hash && prev.HasImports() {
				return parsedFile{rel: sf.RelPath, rec: prev, reused: true}, nil
			}

			result, err := parser.Extract(content, sf.Language)
			if err != nil {
				return parsedFile{}, err
			}
			return parsedFile{
				rel: sf.RelPath,
				rec: models.FileRecord{
					Hash:         hash,
					Language:     string(sf.Language),
					Tags:         result.Tags,
					Imports:      result.Imports,
					LastParsedAt: now,
				},
			}, nil
		},
		opts.OnProgress,
	)

	records := make(map[string]models.FileRecord, len(parsed))
	result := &Result{TotalFiles: len(files), Errors: procErrs}
	for _, pf := range parsed {
		records[pf.rel] = pf.rec
		if pf.reused {
			result.ReusedFiles++
		} else {
			result.ParsedFiles++
		}
	}

	// A file whose read or parse failed keeps its previous record; the
	// failure is already in Errors. Failed files with no prior record
	// stay out of the state.
	for _, sf := range files {
		if _, ok := records[sf.RelPath]; ok {
			continue
		}
		if prev, ok := prevFiles[sf.RelPath]; ok {
			records[sf.RelPath] = prev
			result.ReusedFiles++
		}
	}

	pathRes, err := resolver.Load(root, opts.Config.Resolver.ConfigFile)
	if err != nil {
		// A broken tsconfig degrades alias resolution, nothing more.
		pathRes = nil
	}

	result.Graph = graph.Build(records, pathRes)
	result.State = &State{
		Version:     StateVersion,
		GeneratedAt: now,
		RepoRoot:    filepath.ToSlash(root),
		Files:       records,
	}
	return result, nil
}

// rebuildGraph derives the graph from an arbitrary record set.
func rebuildGraph(root string, records map[string]models.FileRecord, opts Options) (*graph.Graph, error) {
	pathRes, err := resolver.Load(root, opts.Config.Resolver.ConfigFile)
	if err != nil {
		pathRes = nil
	}
	return graph.Build(records, pathRes), nil
}

func persist(indexDir string, res *Result) error {
	if err := SaveState(indexDir, res.State); err != nil {
		return err
	}
	return SaveGraph(indexDir, res.Graph)
}
