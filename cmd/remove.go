package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
	"speck/internal/ui"
)

func newRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <branch-name>",
		Short: "Remove a tracked branch from the store (the git branch stays).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			name := args[0]
			svc, err := service.New()
			if err != nil {
				return err
			}

			if !force {
				dependents, err := svc.Dependents(name)
				if err != nil {
					return err
				}
				if len(dependents) > 0 {
					confirmed, err := confirmForcedRemoval(name, dependents)
					if err != nil {
						return err
					}
					if !confirmed {
						return fmt.Errorf("removal of %q cancelled; %v still base on it", name, dependents)
					}
					force = true
				}
			}

			warnings, err := svc.Remove(name, force)
			if err != nil {
				return err
			}
			fmt.Printf("Branch %q removed from the store.\n", name)
			for _, w := range warnings {
				fmt.Println(ui.Warning(w))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove even if other branches base on it (leaves them dangling)")
	return cmd
}

// confirmForcedRemoval prompts on a TTY; without one the caller gets the
// confirmation-required error (exit code 3) so a wrapper can re-run with
// --force.
func confirmForcedRemoval(name string, dependents []string) (bool, error) {
	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false, &service.ConfirmationError{
			Msg: fmt.Sprintf("removing %q leaves %s dangling; re-run with --force to confirm",
				name, strings.Join(dependents, ", ")),
		}
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s still base on %q; remove anyway", strings.Join(dependents, ", "), name),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
