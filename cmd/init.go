package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Long: `Init writes the commented default configuration to .typstmath/config.yaml,
to ~/.config/typstmath/config.yaml with --global, or to the given path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("global", false, "write the user config instead of the project config")
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := localConfigPath
	if global, _ := cmd.Flags().GetBool("global"); global {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		target = filepath.Join(home, ".config", "typstmath", "config.yaml")
	}
	if len(args) == 1 {
		target = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", target, err)
	}

	if err := config.WriteDefaultConfig(target); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
	return nil
}
