package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/logs"
	"speck/internal/service"
	"speck/internal/ui"
)

func newCreateCmd() *cobra.Command {
	var (
		specID     string
		base       string
		parentSpec string
		worktree   string
		noCheckout bool
	)

	cmd := &cobra.Command{
		Use:   "create <branch-name>",
		Short: "Create a stacked branch and track it against a spec.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			svc, err := service.New()
			if err != nil {
				return err
			}

			name := args[0]
			logs.Info("Creating stacked branch %q (spec %s, base %q)", name, specID, base)
			res, err := svc.CreateBranch(service.CreateOptions{
				Name:         name,
				SpecID:       specID,
				Base:         base,
				ParentSpecID: parentSpec,
				WorktreePath: worktree,
				NoCheckout:   noCheckout,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Branch %q created on %q for spec %s.\n", name, res.Base, res.Entry.SpecID)
			for _, w := range res.Warnings {
				fmt.Println(ui.Warning(w))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specID, "spec", "", "Spec id this branch implements (NNN-kebab-name)")
	cmd.Flags().StringVar(&base, "base", "", "Base branch (defaults to the repository default branch)")
	cmd.Flags().StringVar(&parentSpec, "parent-spec", "", "Root spec this child-repo branch implements (multi-repo child only)")
	cmd.Flags().StringVar(&worktree, "worktree", "", "Create the branch in a worktree at this path instead of checking it out")
	cmd.Flags().BoolVar(&noCheckout, "no-checkout", false, "Create the branch without switching to it")
	cmd.MarkFlagRequired("spec") //nolint:errcheck

	return cmd
}
