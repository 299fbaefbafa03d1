// Package project provides CLI commands that act on a project directory.
// Includes: init-folders, tree, logs, run, runs
package project

import (
	"github.com/spf13/cobra"
)

// Register adds all project commands to the root command.
// This function is called from the root CLI package during initialization.
func Register(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initFoldersCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
}
