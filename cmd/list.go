package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speck/internal/model"
	"speck/internal/service"
	"speck/internal/stack"
	"speck/internal/store"
	"speck/internal/ui"
)

func newListCmd() *cobra.Command {
	var (
		specID string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked branches in this repository's store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			m, err := store.Load(svc.RepoRoot)
			if err != nil {
				return err
			}

			entries := m.Branches
			if specID != "" {
				entries = entriesForSpec(m, specID)
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Println("No tracked branches.")
				return nil
			}
			current, _ := svc.Git.CurrentBranch()
			for _, e := range entries {
				fmt.Println(ui.RenderEntryLine(e, current))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specID, "spec", "", "Only branches implementing this spec id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of styled text")
	return cmd
}

func entriesForSpec(m *model.BranchMapping, specID string) []model.BranchEntry {
	var out []model.BranchEntry
	for _, name := range stack.BranchesForSpec(m, specID) {
		if e := m.Entry(name); e != nil {
			out = append(out, *e)
		}
	}
	return out
}
