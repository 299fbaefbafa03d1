package config

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/ariel-frischer/envinit/internal/validators"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect schemas and validators",
	Long:  `Check a schema for authoring mistakes and list the validators it can use.`,
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check [schema]",
	Short: "Self-check a schema",
	Long: `Check a schema without reading any config.

Every field must declare a known type and an explicit required flag, and
every validator it names must resolve: built in, or declared in the schema's
validators section with valid arguments.`,
	Example: `  # Check the configured schema
  envinit schema check

  # Check a specific file
  envinit schema check schemas/etl.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchemaCheck,
}

var schemaValidatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List the validators a schema can use",
	Long: `List every validator available to the schema: the built-ins and the
custom entries its validators section declares.

Without a readable schema only the built-ins are listed.`,
	Args: cobra.NoArgs,
	RunE: runSchemaValidators,
}

func init() {
	schemaCmd.GroupID = shared.GroupConfiguration
	schemaCmd.AddCommand(schemaCheckCmd)
	schemaCmd.AddCommand(schemaValidatorsCmd)
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	path := shared.SchemaPath(cmd, settings)
	if len(args) == 1 {
		path = args[0]
	}

	s, reg, err := shared.LoadSchema(path)
	if err != nil {
		return err
	}

	custom := 0
	for _, entry := range reg.Entries() {
		if !entry.Builtin {
			custom++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid: %d fields, %d custom validators\n",
		shared.NewColors().Green("✓"), path, s.Len(), custom)
	return nil
}

func runSchemaValidators(cmd *cobra.Command, _ []string) error {
	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}

	reg := validators.NewRegistry()
	path := shared.SchemaPath(cmd, settings)
	if _, loaded, err := shared.LoadSchema(path); err == nil {
		reg = loaded
	} else {
		shared.ConsoleLogger(cmd).Debug("listing built-in validators only", "schema", path, "reason", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSOURCE\tDESCRIPTION")
	for _, entry := range reg.Entries() {
		source := "builtin"
		if !entry.Builtin {
			source = "schema"
		}
		name := entry.Name
		if len(entry.Params) > 0 {
			name = fmt.Sprintf("%s(%s)", entry.Name, strings.Join(entry.Params, ", "))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, entry.Kind, source, entry.Description)
	}
	return w.Flush()
}
