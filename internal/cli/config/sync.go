package config

import (
	"fmt"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configSyncCmd = &cobra.Command{
	Use:   "sync <config>",
	Short: "Sync a config file with its schema",
	Long: `Synchronize a config file with its schema.

Appends every schema field the file lacks, with its default or a
<REQUIRED>/<OPTIONAL> placeholder, and reports keys the schema does not
declare. With --prune those keys are removed.

User-set values are always preserved.`,
	Example: `  # Preview changes without applying (dry-run)
  envinit config sync config.yml --dry-run

  # Add missing fields and drop unknown ones
  envinit config sync config.yml --prune`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSync,
}

func init() {
	configSyncCmd.Flags().Bool("dry-run", false, "Preview changes without applying")
	configSyncCmd.Flags().Bool("prune", false, "Remove keys the schema does not declare")
}

func runConfigSync(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	prune, _ := cmd.Flags().GetBool("prune")

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	schemaPath := shared.SchemaPath(cmd, settings)
	s, _, err := shared.LoadSchema(schemaPath)
	if err != nil {
		return err
	}

	result, err := cfgpkg.SyncConfig(configPath, s, cfgpkg.SyncOptions{DryRun: dryRun, Prune: prune})
	if err != nil {
		return shared.PipelineError(err, configPath, schemaPath)
	}

	if dryRun {
		fmt.Fprintf(out, "%s Dry run - no changes made\n\n", dim("→"))
	}

	if len(result.Unknown) > 0 && !prune {
		fmt.Fprintf(out, "%s Keys not in the schema (kept, use --prune to remove):\n", yellow("→"))
		for _, key := range result.Unknown {
			fmt.Fprintf(out, "  ? %s\n", key)
		}
	}

	if !result.Changed {
		fmt.Fprintf(out, "%s %s is up to date\n", green("✓"), configPath)
		return nil
	}

	if len(result.Added) > 0 {
		fmt.Fprintf(out, "%s Fields to add:\n", yellow("→"))
		for _, key := range result.Added {
			fmt.Fprintf(out, "  + %s\n", key)
		}
	}

	if len(result.Removed) > 0 {
		fmt.Fprintf(out, "%s Unknown keys to remove:\n", yellow("→"))
		for _, key := range result.Removed {
			fmt.Fprintf(out, "  - %s\n", key)
		}
	}

	if !dryRun {
		fmt.Fprintf(out, "\n%s Config synced: %d added, %d removed, %d preserved\n",
			green("✓"), len(result.Added), len(result.Removed), result.Preserved)
	} else {
		fmt.Fprintf(out, "\n%s Would sync: %d to add, %d to remove, %d to preserve\n",
			dim("→"), len(result.Added), len(result.Removed), result.Preserved)
	}

	return nil
}
