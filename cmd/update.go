package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/model"
	"speck/internal/service"
)

func newUpdateCmd() *cobra.Command {
	var (
		statusStr string
		prNumber  int
	)

	cmd := &cobra.Command{
		Use:   "update <branch-name>",
		Short: "Update a tracked branch's status (merged/abandoned are terminal).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			status, err := model.ParseStatus(statusStr)
			if err != nil {
				return err
			}
			var pr *int
			if cmd.Flags().Changed("pr") {
				pr = &prNumber
			}

			svc, err := service.New()
			if err != nil {
				return err
			}
			if err := svc.UpdateStatus(args[0], status, pr); err != nil {
				return err
			}
			fmt.Printf("Branch %q is now %s.\n", args[0], status)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusStr, "status", "", "New status: active, submitted, merged, or abandoned")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "Pull request number to record")
	cmd.MarkFlagRequired("status") //nolint:errcheck
	return cmd
}
