package cmd

import (
	"github.com/spf13/cobra"

	"speck/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP stdio server exposing speck tools to coding agents.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := repoRoot()
			if err != nil {
				return err
			}
			return mcpserver.ServeStdio(root)
		},
	}
}
