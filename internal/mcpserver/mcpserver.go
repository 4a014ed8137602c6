// Package mcpserver exposes the repository index over the Model Context
// Protocol so coding agents can pull ranked context without shelling out.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the repomap tools.
type Server struct {
	server *mcp.Server
	// root is the repository the index queries run against.
	root string
}

// NewServer creates an MCP server rooted at the given repository.
func NewServer(version, root string) *Server {
	if version == "" {
		version = "dev"
	}
	if root == "" {
		root = "."
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repomap",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, root: root}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the index query tools to the server.
func (s *Server) registerTools() {
	// Ranked context bundle for a set of seed files
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repomap_context",
		Description: describeContext(),
	}, s.handleContext)

	// Symbol inventory and dependency neighborhood of one file
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repomap_symbols",
		Description: describeSymbols(),
	}, s.handleSymbols)

	// Graph statistics and Mermaid rendering
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repomap_graph",
		Description: describeGraph(),
	}, s.handleGraph)
}
