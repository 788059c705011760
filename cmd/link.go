package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/multirepo"
	"speck/internal/ui"
)

func newLinkCmd() *cobra.Command {
	var (
		name       string
		parentSpec string
	)

	cmd := &cobra.Command{
		Use:   "link <child-path>",
		Short: "Link a child repository to this multi-repo root.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			root, err := repoRoot()
			if err != nil {
				return err
			}
			if err := multirepo.LinkChild(root, args[0], name, parentSpec); err != nil {
				return err
			}
			fmt.Printf("Linked %s as a child of this root.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Link name (defaults to the child directory's base name)")
	cmd.Flags().StringVar(&parentSpec, "parent-spec", "", "Default root spec for the child's new branches")
	return cmd
}

func newUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <child-name>",
		Short: "Unlink a child repository (its store is kept, flagged as orphaned).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			root, err := repoRoot()
			if err != nil {
				return err
			}
			orphaned, err := multirepo.UnlinkChild(root, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Unlinked child %q.\n", args[0])
			if orphaned != "" {
				fmt.Println(ui.Warning("orphaned store left at " + orphaned))
			}
			return nil
		},
	}
}
