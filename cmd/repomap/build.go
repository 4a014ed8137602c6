package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/progress"
	"github.com/Decolo/repomap/pkg/index"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build the index: parse sources and derive the dependency graph",
		ArgsUsage: "[path]",
		Action:    runBuildCmd,
	}
}

func runBuildCmd(c *cli.Context) error {
	root, err := repoRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}

	opts := index.Options{Config: cfg}
	var tracker *progress.Tracker
	if !c.Bool("quiet") {
		tracker = progress.NewSpinner("Indexing files...")
		opts.OnProgress = tracker.Tick
	}

	res, err := index.Build(root, opts)
	if tracker != nil {
		if err != nil {
			tracker.Fail(err)
		} else {
			tracker.Done()
		}
	}
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	reportResult(c, res)
	return nil
}

// reportResult prints the build/update summary shared by both commands.
func reportResult(c *cli.Context, res *index.Result) {
	color.Green("Indexed %d files (%d parsed, %d reused)",
		res.TotalFiles, res.ParsedFiles, res.ReusedFiles)
	if res.RemovedFiles > 0 {
		fmt.Printf("  removed %d stale entries\n", res.RemovedFiles)
	}
	fmt.Printf("  graph: %d nodes, %d edges (fingerprint %016x)\n",
		res.Graph.NodeCount(), res.Graph.EdgeCount(), res.Graph.Fingerprint())

	if res.Errors != nil && res.Errors.HasErrors() {
		color.Yellow("Warning: %d files failed to parse (previous records kept where available)", len(res.Errors.Errors))
		if c.Bool("quiet") {
			return
		}
		for i, pe := range res.Errors.Errors {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(res.Errors.Errors)-5)
				break
			}
			fmt.Printf("  %s: %v\n", pe.Path, pe.Err)
		}
	}
}
