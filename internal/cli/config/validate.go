package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Validate a config file against its schema",
	Long: `Validate a config file against its schema.

Keys are normalized (trimmed, spaces to underscores, lowercased), defaults are
applied, and every field is checked. All problems are reported at once.
*_auth_path keys are loaded into the auth section.

The schema comes from --schema, else schema_path in .envinit.yml.`,
	Example: `  # Validate against the configured schema
  envinit validate config.yml

  # Validate against a specific schema, JSON output for CI
  envinit validate config.yml --schema schema.yml --json

  # One "key: message" line per problem
  envinit validate generated_config_20240101_120000.yaml --lint`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.GroupID = shared.GroupGettingStarted
	validateCmd.Flags().Bool("json", false, "Print the result as JSON")
	validateCmd.Flags().Bool("lint", false, "Print one 'key: message' line per problem")
}

// validateReport is the --json output.
type validateReport struct {
	Config string         `json:"config"`
	Schema string         `json:"schema"`
	Valid  bool           `json:"valid"`
	Errors []string       `json:"errors,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	lint, _ := cmd.Flags().GetBool("lint")
	if asJSON && lint {
		return apperrors.InvalidFlagCombination("--json --lint", "choose one output format")
	}

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	schemaPath := shared.SchemaPath(cmd, settings)

	if lint {
		return runLint(out, configPath, schemaPath)
	}

	loaded, err := cfgpkg.Load(cfgpkg.LoadOptions{ConfigPath: configPath, SchemaPath: schemaPath})
	if err == nil {
		defer loaded.Close()
	}

	if asJSON {
		return printValidateJSON(out, configPath, schemaPath, loaded, err)
	}

	if err != nil {
		shared.PrintProblems(out, err)
		return shared.PipelineError(err, configPath, schemaPath)
	}

	colors := shared.NewColors()
	fmt.Fprintf(out, "%s %s is valid against %s (%d fields, %d auth systems)\n",
		colors.Green("✓"), configPath, loaded.Schema.Name, loaded.Schema.Len(), len(loaded.Auth.Systems()))
	return nil
}

func printValidateJSON(out io.Writer, configPath, schemaPath string, loaded *cfgpkg.Loaded, err error) error {
	report := validateReport{Config: configPath, Schema: schemaPath}
	if err != nil {
		problems := shared.Problems(err)
		if problems == nil {
			return shared.PipelineError(err, configPath, schemaPath)
		}
		report.Errors = problems
	} else {
		report.Valid = true
		report.Values = loaded.Masked()
	}

	data, mErr := json.MarshalIndent(report, "", "  ")
	if mErr != nil {
		return apperrors.Wrap(mErr, apperrors.Runtime)
	}
	fmt.Fprintln(out, string(data))

	if !report.Valid {
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	return nil
}

func runLint(out io.Writer, configPath, schemaPath string) error {
	s, reg, err := shared.LoadSchema(schemaPath)
	if err != nil {
		return err
	}
	raw, err := cfgpkg.ReadFile(configPath)
	if err != nil {
		return shared.PipelineError(err, configPath, schemaPath)
	}

	lines := cfgpkg.Lint(raw, s, reg)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if len(lines) > 0 {
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	fmt.Fprintf(out, "%s no problems in %s\n", shared.NewColors().Green("✓"), configPath)
	return nil
}
