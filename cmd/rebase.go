package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/logs"
	"speck/internal/service"
)

func newRebaseCmd() *cobra.Command {
	var runGit bool

	cmd := &cobra.Command{
		Use:   "rebase <branch-name> <new-base>",
		Short: "Re-point a branch's recorded base (cycle-checked), optionally rebasing in git.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			branch, newBase := args[0], args[1]
			svc, err := service.New()
			if err != nil {
				return err
			}

			logs.Info("Rebasing %q onto %q (git=%v)", branch, newBase, runGit)
			if err := svc.Rebase(branch, newBase, runGit); err != nil {
				return err
			}
			fmt.Printf("Branch %q now bases on %q.\n", branch, newBase)
			return nil
		},
	}

	cmd.Flags().BoolVar(&runGit, "git", false, "Also run `git rebase` onto the new base")
	return cmd
}
