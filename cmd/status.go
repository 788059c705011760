package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speck/internal/service"
	"speck/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the branch-stack status, across all linked repos from a multi-repo root.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			ov, err := svc.Overview()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(ov)
			}

			fmt.Printf("Context: %s\n", ov.Context)
			for _, w := range ov.Warnings {
				fmt.Println(ui.Warning(w))
			}
			current, _ := svc.Git.CurrentBranch()
			for _, repo := range ov.Repos {
				fmt.Printf("\n%s (%s)\n", ui.RepoHeading(repo.Name), repo.Kind)
				if len(repo.Mapping.Branches) == 0 {
					if repo.HasStore {
						fmt.Println("  no branches")
					} else {
						fmt.Println("  no branches (branch-stacking not used here yet)")
					}
					continue
				}
				for _, e := range repo.Mapping.Branches {
					fmt.Println("  " + ui.RenderEntryLine(e, current))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of styled text")
	return cmd
}
