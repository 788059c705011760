package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/service"
	"speck/internal/store"
	"speck/internal/ui"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "View the stacked branches as a tree.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			m, err := store.Load(svc.RepoRoot)
			if err != nil {
				return err
			}
			current, _ := svc.Git.CurrentBranch()
			fmt.Println(ui.RenderTree(m, current))
			return nil
		},
	}
}
