package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"speck/internal/config"
	"speck/internal/locks"
	"speck/internal/logs"
)

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Speck configuration (local or global).",
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a config value (local overrides global).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			val := config.GetConfigValue(key)
			fmt.Printf("%s = %s\n", key, val)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a local config value.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locks.LockRepo()
			defer locks.UnlockRepo()

			key, value := args[0], args[1]
			if err := config.SetConfigValue(key, value, false); err != nil {
				logs.Error("Failed to set local config %q: %v", key, err)
				return err
			}
			fmt.Printf("Set local config: %s = %s\n", key, value)
			return nil
		},
	}

	setGlobalCmd := &cobra.Command{
		Use:   "set-global <key> <value>",
		Short: "Set a global config value under the XDG config dir.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.SetConfigValue(key, value, true); err != nil {
				logs.Error("Failed to set global config %q: %v", key, err)
				return err
			}
			fmt.Printf("Set global config: %s = %s\n", key, value)
			return nil
		},
	}

	cfgCmd.AddCommand(getCmd, setCmd, setGlobalCmd)
	return cfgCmd
}
