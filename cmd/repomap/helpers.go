package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/output"
	"github.com/Decolo/repomap/pkg/config"
	"github.com/Decolo/repomap/pkg/index"
)

// repoRoot resolves the repository root from the first positional argument,
// defaulting to the current directory.
func repoRoot(c *cli.Context) (string, error) {
	root := "."
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", root, err)
	}
	return abs, nil
}

// loadConfig honors an explicit --config, otherwise searches the root.
func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(root), nil
}

// newFormatter builds the output formatter from global flags. Color is
// dropped when writing to a file or when the config disables it.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if !c.IsSet("format") && cfg.Output.Format != "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

// loadSnapshot opens the persisted index for queries.
func loadSnapshot(root string, cfg *config.Config) (*index.Snapshot, error) {
	return index.LoadSnapshot(root, cfg)
}

// seedsFromFlag normalizes the --seed values to repository-relative paths.
func seedsFromFlag(root string, raw []string) []string {
	seeds := make([]string, 0, len(raw))
	for _, s := range raw {
		seeds = append(seeds, index.NormalizeSeed(root, s))
	}
	return seeds
}
