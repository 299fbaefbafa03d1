package config

import (
	"fmt"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/spf13/cobra"
)

var configSetCmd = &cobra.Command{
	Use:   "set <config> <key> <value>",
	Short: "Set a value in a config file",
	Long: `Set one value in a config file, keeping its comments and key order.

The value is parsed with the type the schema declares for the key: integer,
boolean, or string. Keys the schema does not declare get an inferred type.
Nested keys use dots. The file is created if it does not exist.`,
	Example: `  # Set an integer field
  envinit config set config.yml timeout 30

  # Set a nested value
  envinit config set config.yml tabs.summary Overview`,
	Args: cobra.ExactArgs(3),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	configPath, key, value := args[0], args[1], args[2]

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	s, _, err := shared.LoadSchema(shared.SchemaPath(cmd, settings))
	if err != nil {
		return err
	}

	parsed, err := cfgpkg.SetValue(configPath, key, value, s)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Argument,
			fmt.Sprintf("Check the type the schema declares for %s", key))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %v in %s\n",
		shared.NewColors().Green("✓"), cfgpkg.NormalizeKey(key), parsed, configPath)
	return nil
}
