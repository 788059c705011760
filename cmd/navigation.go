package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/service"
	"speck/internal/store"
)

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Switch to a branch stacked on the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			m, err := store.Load(svc.RepoRoot)
			if err != nil {
				return err
			}

			curr, err := svc.Git.CurrentBranch()
			if err != nil {
				return fmt.Errorf("cannot determine current branch: %w", err)
			}

			children := m.Dependents(curr)
			if len(children) == 0 {
				return fmt.Errorf("no next branch: nothing in the stack bases on %q", curr)
			}
			if len(children) > 1 {
				return fmt.Errorf("multiple branches base on %q (%v); check one out explicitly", curr, children)
			}

			if err := svc.Git.Checkout(children[0]); err != nil {
				return err
			}
			fmt.Printf("Switched to branch %q\n", children[0])
			return nil
		},
	}
}

func newPrevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prev",
		Short: "Switch to the current branch's base",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			m, err := store.Load(svc.RepoRoot)
			if err != nil {
				return err
			}

			curr, err := svc.Git.CurrentBranch()
			if err != nil {
				return fmt.Errorf("cannot determine current branch: %w", err)
			}

			entry := m.Entry(curr)
			if entry == nil {
				return fmt.Errorf("current branch %q is not tracked; run `speck list` to see tracked branches", curr)
			}

			if err := svc.Git.Checkout(entry.BaseBranch); err != nil {
				return err
			}
			fmt.Printf("Switched to branch %q\n", entry.BaseBranch)
			return nil
		},
	}
}
