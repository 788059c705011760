package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
)

func newPrCmd() *cobra.Command {
	prCmd := &cobra.Command{
		Use:   "pr",
		Short: "Record and suggest pull requests for stacked branches",
	}

	recordCmd := &cobra.Command{
		Use:   "record <branch-name> <pr-number>",
		Short: "Record an opened PR against a tracked branch.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			pr, err := strconv.Atoi(args[1])
			if err != nil || pr <= 0 {
				return fmt.Errorf("PR number must be a positive integer, got %q", args[1])
			}

			svc, err := service.New()
			if err != nil {
				return err
			}
			if err := svc.RecordPR(args[0], pr); err != nil {
				return err
			}
			fmt.Printf("Recorded PR #%d on %q (now submitted).\n", pr, args[0])
			return nil
		},
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "List branches ready for a PR (exit code 2 when any are).",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			if err := svc.SuggestPRs(); err != nil {
				return err
			}
			fmt.Println("No branches are waiting on a PR.")
			return nil
		},
	}

	prCmd.AddCommand(recordCmd, suggestCmd)
	return prCmd
}
