package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/locks"
	"speck/internal/service"
)

func newRepairCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Rebuild the spec index and fix recoverable store drift.",
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			svc, err := service.New()
			if err != nil {
				return err
			}
			dirty, err := svc.Repair(check)
			if err != nil {
				return err
			}

			switch {
			case check && dirty:
				return fmt.Errorf("store needs repair; run `speck repair` without --check")
			case check:
				fmt.Println("Store is consistent.")
			case dirty:
				fmt.Println("Store repaired.")
			default:
				fmt.Println("Store was already consistent; nothing to do.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report drift without writing")
	return cmd
}
