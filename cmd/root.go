package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speck/internal/config"
	"speck/internal/git"
	"speck/internal/logs"
	"speck/internal/ui"
)

var (
	verbose bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "speck",
	Short: "Speck tracks stacked feature branches against their specs.",
	Long: `Speck records every stacked branch, its base, and the spec it implements
in a per-repository store, and keeps that store consistent across
single-repo and multi-repo layouts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logs.SetVerbose(verbose)
		if err := logs.InitLogger(); err != nil {
			return err
		}
		if err := config.InitializeGlobalConfig(); err != nil {
			return err
		}
		// The local config only exists after `speck init`; loading it is
		// best effort everywhere else.
		if _, err := os.Stat(config.LocalConfigFile); err == nil {
			if err := config.InitializeRepoConfig(); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logs.Close()
	},
}

// Execute is called by main.go to run the root command.
func Execute() error {
	return rootCmd.Execute()
}

// repoRoot resolves the enclosing git work-tree root, so commands behave
// the same from any subdirectory of the repository.
func repoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	g := git.New(cwd)
	if !g.IsGitRepo() {
		return "", fmt.Errorf("%s is not inside a git repository; run `git init` or cd into one", cwd)
	}
	root, err := g.TopLevel()
	if err != nil {
		return "", fmt.Errorf("failed to resolve the repository root: %w", err)
	}
	return root, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newListCmd(),
		newViewCmd(),
		newStatusCmd(),
		newUpdateCmd(),
		newSyncCmd(),
		newRemoveCmd(),
		newRebaseCmd(),
		newRenameCmd(),
		newRepairCmd(),
		newNextCmd(),
		newPrevCmd(),
		newPrCmd(),
		newCICmd(),
		newLinkCmd(),
		newUnlinkCmd(),
		newExportCmd(),
		newImportCmd(),
		newConfigCmd(),
		newHookCmd(),
		newServeCmd(),
		newWatchCmd(),
		newMCPCmd(),
	)

	rootCmd.SetUsageTemplate(ui.ColorHeadings(rootCmd.UsageTemplate()))
}
