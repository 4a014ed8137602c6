package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/output"
	"github.com/Decolo/repomap/internal/vcs"
	"github.com/Decolo/repomap/pkg/index"
	"github.com/Decolo/repomap/pkg/models"
)

func contextCmd() *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "Rank files against seed files and assemble a context bundle",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "seed",
				Aliases: []string{"s"},
				Usage:   "Seed file (repeatable)",
			},
			&cli.StringFlag{
				Name:  "diff-range",
				Usage: "Derive seeds from files changed in a git range (e.g. main..HEAD)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of causal files to return (default from config)",
			},
		},
		Action: runContextCmd,
	}
}

func runContextCmd(c *cli.Context) error {
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

	seeds := seedsFromFlag(root, c.StringSlice("seed"))
	if rangeSpec := c.String("diff-range"); rangeSpec != "" {
		diffSeeds, err := seedsFromDiff(root, rangeSpec, snap)
		if err != nil {
			return err
		}
		seeds = mergeSeeds(seeds, diffSeeds)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seeds: pass --seed or --diff-range")
	}

	topK := c.Int("top")
	if topK <= 0 {
		topK = cfg.Rank.TopK
	}

	bundle, _ := snap.Context(seeds, topK)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			Seeds  []string             `json:"seeds" toon:"seeds"`
			Bundle models.ContextBundle `json:"bundle" toon:"bundle"`
		}{seeds, bundle})
	}

	colored := formatter.Colored()
	report := &output.Report{
		Title: "Context for " + strings.Join(seeds, ", "),
		Sections: []output.Renderable{
			bucketTable("Primary (seeds)", bundle.Primary, colored),
			bucketTable("Causal", bundle.Causal, colored),
			bucketTable("Contract", bundle.Contract, colored),
			bucketTable("Guardrail", bundle.Guardrail, colored),
		},
	}
	if err := formatter.Output(report); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		printTokenEstimate(formatter, bundle)
	}
	return nil
}

// seedsFromDiff turns the files changed in a git range into seeds,
// keeping only paths the index knows about.
func seedsFromDiff(root, rangeSpec string, snap *index.Snapshot) ([]string, error) {
	changed, err := vcs.DefaultSource().Changed(root, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("diff range %s: %w", rangeSpec, err)
	}
	seeds := make([]string, 0, len(changed))
	for _, p := range changed {
		if _, ok := snap.State.Files[p]; ok {
			seeds = append(seeds, p)
		}
	}
	return seeds, nil
}

// mergeSeeds appends b to a, dropping duplicates while keeping order.
func mergeSeeds(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(a, b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// bucketTable renders one context bucket as a table.
func bucketTable(title string, files []models.RankedFile, colored bool) *output.Table {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		path := f.Path
		if colored {
			path = output.ScoreColor(f.Score, path)
		}
		rows = append(rows, []string{
			path,
			fmt.Sprintf("%.3f", f.Score),
			strings.Join(f.Reasons, ", "),
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"(none)", "", ""})
	}
	return output.NewTable(title, []string{"Path", "Score", "Reasons"}, rows, nil, files)
}

// printTokenEstimate reports roughly how much of a model context window the
// serialized bundle would occupy.
func printTokenEstimate(formatter *output.Formatter, bundle models.ContextBundle) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return
	}
	usage := output.EstimateBudget(string(data), output.DefaultBudget)
	msg := fmt.Sprintf("Bundle: %d files, ~%s tokens (%.1f%% of %s budget)",
		len(bundle.Files()), output.FormatTokenCount(usage.Tokens), usage.Percent, usage.BudgetLabel)
	if formatter.Colored() {
		color.Cyan("%s", msg)
	} else {
		fmt.Fprintln(formatter.Writer(), msg)
	}
}
