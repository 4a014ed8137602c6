package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "repomap",
		Usage:   "Symbol-level dependency graphs and ranked context for polyglot repositories",
		Version: version,
		Description: `Repomap indexes Python, JavaScript, TypeScript, and TSX sources into a
symbol-level dependency graph, then ranks files against seed files to
assemble review context: what a change touches, what it can break, and
which tests and contracts cover it.

The index lives under <root>/.repomap and works fully offline.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"REPOMAP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress progress output",
			},
		},
		Commands: []*cli.Command{
			buildCmd(),
			updateCmd(),
			contextCmd(),
			symbolsCmd(),
			graphCmd(),
			initCmd(),
			mcpCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
