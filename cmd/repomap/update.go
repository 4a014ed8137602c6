package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/progress"
	"github.com/Decolo/repomap/pkg/index"
)

func updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Refresh the index incrementally",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "Git revision range (e.g. main..HEAD); limits re-parsing to changed files",
			},
		},
		Action: runUpdateCmd,
	}
}

func runUpdateCmd(c *cli.Context) error {
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
		tracker = progress.NewSpinner("Updating index...")
		opts.OnProgress = tracker.Tick
	}

	res, err := index.Update(root, c.String("range"), opts)
	if tracker != nil {
		if err != nil {
			tracker.Fail(err)
		} else {
			tracker.Done()
		}
	}
	if err != nil {
		return fmt.Errorf("updating index: %w", err)
	}

	reportResult(c, res)
	if res.GraphChanged {
		fmt.Println("  graph structure changed")
	} else {
		color.Green("  graph structure unchanged")
	}
	return nil
}
