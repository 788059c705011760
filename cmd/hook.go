package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/hooks"
	"speck/internal/locks"
	"speck/internal/logs"
)

func newHookCmd() *cobra.Command {
	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage custom hook scripts run on store mutations.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all hooks configured in this repository.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hs := hooks.ListHooks()
			if len(hs) == 0 {
				fmt.Println("No hooks configured.")
				return nil
			}
			fmt.Println("Configured hooks:")
			for _, h := range hs {
				fmt.Println(" -", h)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <event> <script-path>",
		Short: "Add a hook for createBranch, updateStatus, removeBranch, rebaseBranch, or renameBranch.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			event, script := args[0], args[1]
			if err := hooks.AddHook(event, script); err != nil {
				logs.Error("Failed to add hook for event %q: %v", event, err)
				return err
			}
			fmt.Printf("Hook added for event %q -> script %q\n", event, script)
			return nil
		},
	}

	hookCmd.AddCommand(listCmd, addCmd)
	return hookCmd
}
