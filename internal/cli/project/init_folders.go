package project

import (
	"fmt"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/scaffold"
	"github.com/spf13/cobra"
)

var initFoldersCmd = &cobra.Command{
	Use:   "init-folders <config>",
	Short: "Validate a config and create its *_dir folders",
	Long: `Validate a config file, then create every folder named by a key ending
in _dir. Relative paths resolve against the config file's directory, which is
the project root; folders outside the root are refused and nothing is created.
Existing folders are left alone.`,
	Example: `  # Create log_dir, output_dir, db_dir ...
  envinit init-folders config.yml

  # Show folders that already exist too
  envinit init-folders config.yml --debug`,
	Args: cobra.ExactArgs(1),
	RunE: runInitFolders,
}

func init() {
	initFoldersCmd.GroupID = shared.GroupProject
}

func runInitFolders(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	out := cmd.OutOrStdout()

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	schemaPath := shared.SchemaPath(cmd, settings)

	loaded, err := cfgpkg.Load(cfgpkg.LoadOptions{ConfigPath: configPath, SchemaPath: schemaPath})
	if err != nil {
		shared.PrintProblems(out, err)
		return shared.PipelineError(err, configPath, schemaPath)
	}
	defer loaded.Close()

	result, err := scaffold.New(nil, shared.ConsoleLogger(cmd)).InitFolders(loaded.Values, loaded.Root)
	if err != nil {
		return shared.WithExitCode(shared.ExitFolderInitFailed, apperrors.FolderInitFailed(err))
	}

	colors := shared.NewColors()
	for _, f := range result.Created {
		fmt.Fprintf(out, "  %s %s %s\n", colors.Green("+"), f.Key, f.Path)
	}
	fmt.Fprintf(out, "%s %d folders created, %d already present under %s\n",
		colors.Green("✓"), len(result.Created), len(result.Existing), result.Root)
	return nil
}
