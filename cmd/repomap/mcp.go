package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/Decolo/repomap/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:      "mcp",
		Usage:     "Start an MCP (Model Context Protocol) server over stdio",
		ArgsUsage: "[path]",
		Description: `Starts an MCP server that exposes the repository index as tools an LLM
can invoke. The index must already exist (run 'repomap build' first).

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "repomap": {
        "command": "repomap",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - repomap_context   Ranked context bundle for a set of seed files
  - repomap_symbols   Symbol inventory and dependency neighborhood of a file
  - repomap_graph     Graph statistics or a Mermaid diagram`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server manifest (server.json) and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	root, err := repoRoot(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(version, root)
	return server.Run(ctx)
}
