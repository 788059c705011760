package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/service"
)

func newCICmd() *cobra.Command {
	ciCmd := &cobra.Command{
		Use:   "ci",
		Short: "CI/CD checks over the stack (merge-order gating).",
	}

	checkCmd := &cobra.Command{
		Use:   "check <branch-name>",
		Short: "Check whether <branch> can be merged given its ancestors' states.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			if err := svc.CheckMergeFeasibility(args[0]); err != nil {
				return err
			}
			fmt.Printf("Branch %q can be safely merged.\n", args[0])
			return nil
		},
	}

	ciCmd.AddCommand(checkCmd)
	return ciCmd
}
