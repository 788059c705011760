package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/logs"
	netsrv "speck/internal/net"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON status API over the branch stores.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := repoRoot()
			if err != nil {
				return err
			}
			logs.Info("Starting status API on port %d", port)
			fmt.Printf("Speck status API on :%d (Ctrl+C to stop)\n", port)
			return netsrv.StartServer(root, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	return cmd
}
