package index

import (
	"time"

	"github.com/Decolo/repomap/internal/scanner"
	"github.com/Decolo/repomap/internal/vcs"
	"github.com/Decolo/repomap/pkg/models"
)

// Update refreshes the index incrementally. With a revision range, only
// the files git reports as changed (plus files new to discovery) are
// re-read; without one, every discovered file is re-read but unchanged
// hashes reuse their previous records. Files no longer discovered are
// dropped. Falls back to a full build when no index exists.
func Update(root, rangeSpec string, opts Options) (*Result, error) {
	opts.fill(root)

	indexDir := IndexDir(root, opts.Config)
	prev, err := LoadState(indexDir)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return Build(root, opts)
	}

	files, err := scanner.New(opts.Config).Scan(root)
	if err != nil {
		return nil, err
	}

	candidates := files
	retained := make(map[string]models.FileRecord)
	if rangeSpec != "" {
		touched, err := touchedPaths(root, rangeSpec)
		if err != nil {
			return nil, err
		}
		candidates = candidates[:0:0]
		for _, sf := range files {
			_, known := prev.Files[sf.RelPath]
			if touched[sf.RelPath] || !known {
				candidates = append(candidates, sf)
			} else {
				retained[sf.RelPath] = prev.Files[sf.RelPath]
			}
		}
	}

	res, err := processFiles(root, candidates, prev.Files, opts)
	if err != nil {
		return nil, err
	}

	for rel, rec := range retained {
		res.State.Files[rel] = rec
	}
	res.TotalFiles = len(files)
	res.ReusedFiles += len(retained)
	res.RemovedFiles = countRemoved(prev.Files, res.State.Files)

	// Rebuild the graph over the merged record set when retained records
	// were held out of the candidate pass.
	if len(retained) > 0 {
		full, err := rebuildGraph(root, res.State.Files, opts)
		if err != nil {
			return nil, err
		}
		res.Graph = full
	}

	if prevGraph, err := LoadGraph(indexDir); err == nil {
		res.GraphChanged = prevGraph.Fingerprint() != res.Graph.Fingerprint()
	} else {
		res.GraphChanged = true
	}

	res.State.GeneratedAt = opts.Now().UTC().Format(time.RFC3339)
	if !opts.SkipPersist {
		if err := persist(indexDir, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// touchedPaths unions the changed and deleted paths for a revision range.
// Deleted paths that still exist on disk get re-parsed rather than trusted
// from the old state.
func touchedPaths(root, rangeSpec string) (map[string]bool, error) {
	src := vcs.DefaultSource()
	changed, err := src.Changed(root, rangeSpec)
	if err != nil {
		return nil, err
	}
	deleted, err := src.Deleted(root, rangeSpec)
	if err != nil {
		return nil, err
	}
	touched := make(map[string]bool, len(changed)+len(deleted))
	for _, p := range changed {
		touched[p] = true
	}
	for _, p := range deleted {
		touched[p] = true
	}
	return touched, nil
}

func countRemoved(prev, next map[string]models.FileRecord) int {
	removed := 0
	for rel := range prev {
		if _, ok := next[rel]; !ok {
			removed++
		}
	}
	return removed
}
