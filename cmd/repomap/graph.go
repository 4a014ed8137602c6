package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/output"
	"github.com/Decolo/repomap/pkg/graph"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Show dependency graph statistics or a Mermaid diagram",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Render the file-level graph as a Mermaid diagram",
			},
			&cli.IntFlag{
				Name:  "max-nodes",
				Value: 50,
				Usage: "Node cap for the Mermaid diagram",
			},
			&cli.IntFlag{
				Name:  "max-edges",
				Value: 200,
				Usage: "Edge cap for the Mermaid diagram",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	root, err := repoRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, root)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(root, cfg)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("mermaid") {
		diagram := snap.Graph.ToMermaid(c.Int("max-nodes"), c.Int("max-edges"))
		if formatter.Format() == output.FormatMarkdown {
			fmt.Fprintln(formatter.Writer(), "```mermaid")
			fmt.Fprint(formatter.Writer(), diagram)
			fmt.Fprintln(formatter.Writer(), "```")
			return nil
		}
		fmt.Fprint(formatter.Writer(), diagram)
		return nil
	}

	stats := snap.Graph.CalculateStats()
	fingerprint := fmt.Sprintf("%016x", snap.Graph.Fingerprint())

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			Stats       graph.Stats `json:"stats" toon:"stats"`
			Fingerprint string      `json:"fingerprint" toon:"fingerprint"`
		}{stats, fingerprint})
	}

	rows := [][]string{
		{"Files", strconv.Itoa(stats.Files)},
		{"Symbols", strconv.Itoa(stats.Symbols)},
		{"Edges", strconv.Itoa(stats.Edges)},
		{"Connected components", strconv.Itoa(stats.Components)},
		{"Largest component", strconv.Itoa(stats.LargestComponent)},
		{"Strongly connected components", strconv.Itoa(stats.StronglyConnectedComponents)},
		{"Density", fmt.Sprintf("%.4f", stats.Density)},
		{"Avg degree", fmt.Sprintf("%.2f", stats.AvgDegree)},
		{"Fingerprint", fingerprint},
	}
	for _, rel := range []string{"defines", "references", "depends_on", "test_covers"} {
		if count, ok := stats.EdgesByRelation[rel]; ok {
			rows = append(rows, []string{"  " + rel, strconv.Itoa(count)})
		}
	}

	return formatter.Output(output.NewTable("Dependency Graph", []string{"Metric", "Value"}, rows, nil, struct {
		Stats       graph.Stats `json:"stats" toon:"stats"`
		Fingerprint string      `json:"fingerprint" toon:"fingerprint"`
	}{stats, fingerprint}))
}
