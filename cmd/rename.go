package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
)

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-name> <new-name>",
		Short: "Rename a branch in git and the store, updating dependent bases.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			svc, err := service.New()
			if err != nil {
				return err
			}
			if err := svc.Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Branch %q renamed to %q.\n", args[0], args[1])
			return nil
		},
	}
}
