package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/config"
	"speck/internal/locks"
	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/store"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize Speck in the current repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			root, err := repoRoot()
			if err != nil {
				return err
			}

			if err := config.InitializeGlobalConfig(); err != nil {
				return err
			}
			if err := config.InitializeRepoConfig(); err != nil {
				return err
			}

			if !store.Exists(root) {
				if err := store.Save(root, model.NewMapping()); err != nil {
					return err
				}
			}

			logs.Info("Speck initialized in %s", root)
			fmt.Println("Speck initialized. Create your first stacked branch with `speck create`.")
			return nil
		},
	}
}
