package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/output"
	"github.com/Decolo/repomap/pkg/index"
)

func symbolsCmd() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Usage:     "List the symbols a file defines and its dependency neighborhood",
		ArgsUsage: "<file> [path]",
		Action:    runSymbolsCmd,
	}
}

func runSymbolsCmd(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("a file argument is required")
	}
	file := c.Args().First()

	root := "."
	if c.Args().Len() > 1 {
		root = c.Args().Get(1)
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(root, cfg)
	if err != nil {
		return err
	}

	rel := index.NormalizeSeed(root, file)
	symbols, ok := snap.Symbols(rel)
	if !ok {
		return fmt.Errorf("%s is not in the index", rel)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(symbols)
	}

	rows := make([][]string, 0, len(symbols.Definitions))
	for _, def := range symbols.Definitions {
		rows = append(rows, []string{
			def.Name,
			def.Type,
			strconv.Itoa(def.Line),
			strconv.Itoa(def.References),
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"(no definitions)", "", "", ""})
	}

	report := &output.Report{
		Title: rel + " (" + symbols.Language + ")",
		Sections: []output.Renderable{
			output.NewTable("Definitions", []string{"Name", "Type", "Line", "Refs"}, rows, nil, symbols.Definitions),
			&output.Section{
				Title:   "Dependencies",
				Content: listOrNone(symbols.Dependencies),
			},
			&output.Section{
				Title:   "Dependents",
				Content: listOrNone(symbols.Dependents),
			},
		},
		Data: symbols,
	}
	return formatter.Output(report)
}

func listOrNone(paths []string) string {
	if len(paths) == 0 {
		return "(none)"
	}
	return strings.Join(paths, "\n")
}
