package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Decolo/repomap/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default .repomap config file",
		Description: `Creates a .repomap.toml configuration file with the defaults spelled
out, ready to edit.

Examples:
  repomap init                      # .repomap.toml in the current directory
  repomap init --config-format yaml # .repomap.yaml instead
  repomap init --force              # overwrite an existing file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-format",
				Value: "toml",
				Usage: "Config format: toml, yaml, or json",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Output file path (default .repomap.<format> in the current directory)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	format := strings.ToLower(c.String("config-format"))
	outputPath := c.String("path")
	if outputPath == "" {
		switch format {
		case "yaml":
			outputPath = ".repomap.yaml"
		case "json":
			outputPath = ".repomap.json"
		case "toml":
			outputPath = ".repomap.toml"
		default:
			return fmt.Errorf("unknown config format %q (want toml, yaml, or json)", format)
		}
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %q: %w", dir, err)
		}
	}

	content, err := defaultConfigContent(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize indexing and ranking settings.")
	return nil
}

func defaultConfigContent(format string) ([]byte, error) {
	cfg := config.DefaultConfig()

	switch format {
	case "yaml":
		return yaml.Marshal(cfg)
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		content, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling config to TOML: %w", err)
		}
		var buf strings.Builder
		buf.WriteString("# repomap configuration\n\n")
		buf.Write(content)
		return []byte(buf.String()), nil
	}
}
