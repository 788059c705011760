package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mark branches merged into the default branch and surface PR suggestions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			svc, err := service.New()
			if err != nil {
				return err
			}
			res, err := svc.Sync()
			if err != nil {
				return err
			}

			if len(res.Marked) == 0 {
				fmt.Println("Store already in sync with git.")
			}
			for _, n := range res.Marked {
				fmt.Printf("Marked %q merged.\n", n)
			}
			for _, n := range res.Skipped {
				fmt.Printf("Skipped %q (already terminal).\n", n)
			}

			// A non-nil result here is the structured PR suggestion
			// (exit code 2), not a failure.
			return svc.SuggestPRs()
		},
	}
}
