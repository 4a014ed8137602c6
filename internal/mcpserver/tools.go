package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/Decolo/repomap/pkg/config"
	"github.com/Decolo/repomap/pkg/graph"
	"github.com/Decolo/repomap/pkg/index"
	"github.com/Decolo/repomap/pkg/models"
)

// ContextInput selects seeds for a ranked context bundle.
type ContextInput struct {
	Seeds []string `json:"seeds" jsonschema:"Seed file paths, relative to the repository root. Required."`
	TopK  int      `json:"top_k,omitempty" jsonschema:"Number of causal files to return. Default 20."`
}

// SymbolsInput names the file to inspect.
type SymbolsInput struct {
	Path string `json:"path" jsonschema:"File path relative to the repository root. Required."`
}

// GraphInput selects the graph view.
type GraphInput struct {
	Mermaid  bool `json:"mermaid,omitempty" jsonschema:"Return a Mermaid diagram of file-level dependencies instead of statistics."`
	MaxNodes int  `json:"max_nodes,omitempty" jsonschema:"Node cap for the Mermaid diagram. Default 50."`
	MaxEdges int  `json:"max_edges,omitempty" jsonschema:"Edge cap for the Mermaid diagram. Default 200."`
}

func toolResult(data any) (*mcp.CallToolResult, any, error) {
	text, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// loadSnapshot opens the persisted index for the server's repository root.
func (s *Server) loadSnapshot() (*index.Snapshot, error) {
	cfg := config.LoadOrDefault(s.root)
	snap, err := index.LoadSnapshot(s.root, cfg)
	if err != nil {
		if errors.Is(err, index.ErrNoIndex) {
			return nil, index.ErrNoIndex
		}
		return nil, err
	}
	return snap, nil
}

func (s *Server) handleContext(ctx context.Context, req *mcp.CallToolRequest, input ContextInput) (*mcp.CallToolResult, any, error) {
	if len(input.Seeds) == 0 {
		return toolError("seeds is required")
	}

	snap, err := s.loadSnapshot()
	if err != nil {
		return toolError(err.Error())
	}

	seeds := make([]string, len(input.Seeds))
	for i, seed := range input.Seeds {
		seeds[i] = index.NormalizeSeed(s.root, seed)
	}

	topK := input.TopK
	if topK <= 0 {
		topK = 20
	}

	bundle, _ := snap.Context(seeds, topK)
	out := struct {
		Seeds  []string             `json:"seeds" toon:"seeds"`
		Bundle models.ContextBundle `json:"bundle" toon:"bundle"`
	}{seeds, bundle}
	return toolResult(out)
}

func (s *Server) handleSymbols(ctx context.Context, req *mcp.CallToolRequest, input SymbolsInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError("path is required")
	}

	snap, err := s.loadSnapshot()
	if err != nil {
		return toolError(err.Error())
	}

	rel := index.NormalizeSeed(s.root, input.Path)
	symbols, ok := snap.Symbols(rel)
	if !ok {
		return toolError(fmt.Sprintf("%s is not in the index", rel))
	}
	return toolResult(symbols)
}

func (s *Server) handleGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.loadSnapshot()
	if err != nil {
		return toolError(err.Error())
	}

	if input.Mermaid {
		maxNodes := input.MaxNodes
		if maxNodes <= 0 {
			maxNodes = 50
		}
		maxEdges := input.MaxEdges
		if maxEdges <= 0 {
			maxEdges = 200
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: snap.Graph.ToMermaid(maxNodes, maxEdges)},
			},
		}, nil, nil
	}

	out := struct {
		Stats       graph.Stats `json:"stats" toon:"stats"`
		Fingerprint string      `json:"fingerprint" toon:"fingerprint"`
	}{snap.Graph.CalculateStats(), fmt.Sprintf("%016x", snap.Graph.Fingerprint())}
	return toolResult(out)
}
