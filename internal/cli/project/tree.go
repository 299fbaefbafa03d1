package project

import (
	"fmt"
	"path/filepath"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/filetree"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Write a file tree report of a directory",
	Long: `Write a plain-text tree of a directory to <output>_<timestamp>.txt.

Entries sort by leading number, then name, so 2_extract comes before
10_load. Generated configs, caches, logs and version control are skipped;
tree_exclude in .envinit.yml adds glob patterns. Earlier reports are moved to
an archive folder next to the new one.`,
	Example: `  # Report on the current directory
  envinit tree

  # Report on src into reports/src_tree_<timestamp>.txt
  envinit tree src --output reports/src_tree`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.GroupID = shared.GroupProject
	treeCmd.Flags().StringP("output", "o", "", "Report path without timestamp (default: <output_dir>/file_tree)")
	treeCmd.Flags().Bool("no-archive", false, "Keep earlier reports where they are")
}

func runTree(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	output, _ := cmd.Flags().GetString("output")
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	if output == "" {
		output = filepath.Join(settings.OutputDir, "file_tree")
	}

	excl := filetree.DefaultExclusions()
	excl.Patterns = append(append([]string{}, settings.TreeExclude...), filepath.Base(output)+"_*.txt")

	report, err := filetree.Write(filetree.Options{
		Target:          target,
		Output:          output,
		Exclusions:      excl,
		ArchivePrevious: !noArchive,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.Prerequisite, "Pass an existing directory to describe")
	}

	out := cmd.OutOrStdout()
	colors := shared.NewColors()
	for _, path := range report.Archived {
		fmt.Fprintf(out, "  %s archived %s\n", colors.Dim("→"), path)
	}
	fmt.Fprintf(out, "%s Wrote %s (%d folders, %d files)\n",
		colors.Green("✓"), report.Path, report.Summary.Folders, report.Summary.Files)
	return nil
}
