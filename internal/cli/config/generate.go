package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a config template from a schema",
	Long: `Write a config template from a schema.

Every field is written with its description and type. Fields with a default
get the default; the rest get <REQUIRED> or <OPTIONAL> placeholders, which
validate rejects until they are filled in.

The template is named generated_config_<UTC timestamp>.yaml.`,
	Example: `  # Template next to the configured schema's output dir
  envinit generate

  # Template for a specific schema into ./configs
  envinit generate --schema schema.yml --output-dir configs`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.GroupID = shared.GroupGettingStarted
	generateCmd.Flags().StringP("output-dir", "o", "", "Directory for the template (default: output_dir setting)")
	generateCmd.Flags().Bool("force", false, "Overwrite an existing template")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	force, _ := cmd.Flags().GetBool("force")
	dir, _ := cmd.Flags().GetString("output-dir")

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = settings.OutputDir
	}

	s, _, err := shared.LoadSchema(shared.SchemaPath(cmd, settings))
	if err != nil {
		return err
	}

	stamp := now()
	path, err := cfgpkg.WriteTemplate(s, dir, force, stamp)
	if err != nil {
		if errors.Is(err, cfgpkg.ErrTemplateExists) {
			return apperrors.FileNotWritable(filepath.Join(dir, cfgpkg.TemplateName(stamp)))
		}
		return apperrors.Wrap(err, apperrors.Runtime, "Check that the output directory is writable")
	}

	colors := shared.NewColors()
	fmt.Fprintf(out, "%s Wrote %s (%d fields)\n", colors.Green("✓"), path, s.Len())
	fmt.Fprintf(out, "  Replace every <REQUIRED> value, then run: envinit validate %s\n", path)
	return nil
}
