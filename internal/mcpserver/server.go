// Package mcpserver exposes the branch-stack engine to AI coding agents
// over MCP stdio. Speck's workflow is driven from inside such agents, so
// the same operations the CLI offers are registered as tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New wires the MCP server with every speck tool registered against the
// repository at repoRoot.
func New(repoRoot string) *server.MCPServer {
	s := server.NewMCPServer(
		"speck",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	statusTool := NewStatusTool(repoRoot)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	listTool := NewListTool(repoRoot)
	s.AddTool(listTool.Definition(), listTool.Handle)

	createTool := NewCreateTool(repoRoot)
	s.AddTool(createTool.Definition(), createTool.Handle)

	updateTool := NewUpdateTool(repoRoot)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	return s
}

// ServeStdio runs the server over stdio (blocking).
func ServeStdio(repoRoot string) error {
	return server.ServeStdio(New(repoRoot))
}
