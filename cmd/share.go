package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store as a JSON snapshot.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New()
			if err != nil {
				return err
			}
			return svc.Export(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot path (default: stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <snapshot-file>",
		Short: "Merge entries from a snapshot through full validation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			svc, err := service.New()
			if err != nil {
				return err
			}
			res, err := svc.Import(args[0], force)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d entr(ies); skipped %d.\n", len(res.Added), len(res.Skipped))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip entries that fail validation instead of aborting")
	return cmd
}
