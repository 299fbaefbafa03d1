package config

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit config files",
	Long:  `Show the validated view of a config file, set single values, and sync it with its schema.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show <config>",
	Short: "Show the validated config with secrets masked",
	Long: `Validate a config file and print the result: normalized keys, defaults
applied, and the auth section with every secret masked.`,
	Example: `  # Table view
  envinit config show config.yml

  # YAML or JSON
  envinit config show config.yml --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigShow,
}

func init() {
	configCmd.GroupID = shared.GroupConfiguration
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSyncCmd)

	configShowCmd.Flags().StringP("format", "f", "table", "Output format (table, yaml, json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "yaml" && format != "json" {
		return apperrors.NewArgumentError(
			fmt.Sprintf("unknown format %q", format),
			"Use one of: table, yaml, json",
		)
	}

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	schemaPath := shared.SchemaPath(cmd, settings)

	loaded, err := cfgpkg.Load(cfgpkg.LoadOptions{ConfigPath: configPath, SchemaPath: schemaPath})
	if err != nil {
		shared.PrintProblems(cmd.OutOrStdout(), err)
		return shared.PipelineError(err, configPath, schemaPath)
	}
	defer loaded.Close()

	return writeValues(cmd.OutOrStdout(), loaded.Masked(), format)
}

func writeValues(out io.Writer, values map[string]any, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return apperrors.Wrap(err, apperrors.Runtime)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(values)
		if err != nil {
			return apperrors.Wrap(err, apperrors.Runtime)
		}
		_, err = out.Write(data)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	flat := make(map[string]any)
	flatten("", values, flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, flat[k])
	}
	return w.Flush()
}

// flatten writes nested mappings as dotted keys.
func flatten(prefix string, values map[string]any, into map[string]any) {
	for k, v := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flatten(key, nested, into)
			continue
		}
		into[key] = v
	}
}
