package project

import (
	"fmt"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Manage run log files",
}

var logsArchiveCmd = &cobra.Command{
	Use:   "archive [dir]",
	Short: "Zip all but the newest log files",
	Long: `Move all but the newest --keep .log files of a log directory into one zip
under <dir>/archive. Subdirectories are archived the same way.`,
	Example: `  # Keep the 5 newest logs in ./logs
  envinit logs archive

  # Keep 2 in a custom directory
  envinit logs archive var/logs --keep 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogsArchive,
}

func init() {
	logsCmd.GroupID = shared.GroupProject
	logsCmd.AddCommand(logsArchiveCmd)
	logsArchiveCmd.Flags().IntP("keep", "k", -1, "Log files to keep per directory (default: keep_logs setting)")
}

func runLogsArchive(cmd *cobra.Command, args []string) error {
	dir := "logs"
	if len(args) == 1 {
		dir = args[0]
	}
	keep, _ := cmd.Flags().GetInt("keep")

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = settings.KeepLogs
	}

	fs := afero.NewOsFs()
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return apperrors.DirectoryNotFound(dir)
	}

	archives, err := logging.ArchiveOld(fs, dir, keep)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Runtime, "Check the permissions of the log directory")
	}

	out := cmd.OutOrStdout()
	colors := shared.NewColors()
	if len(archives) == 0 {
		fmt.Fprintf(out, "%s nothing to archive in %s (keeping %d)\n", colors.Green("✓"), dir, keep)
		return nil
	}
	for _, path := range archives {
		fmt.Fprintf(out, "  %s %s\n", colors.Green("+"), path)
	}
	fmt.Fprintf(out, "%s %d archives written\n", colors.Green("✓"), len(archives))
	return nil
}
