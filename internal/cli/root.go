// envinit - Schema-Driven Config Validation
// Source: https://github.com/ariel-frischer/envinit

// Package cli provides Cobra-based CLI commands for envinit.
// It defines the user-facing commands for checking configs against a schema
// (validate, generate, schema, config), preparing a project (init-folders,
// tree, logs) and running monitored commands (run, runs).
package cli

import (
	"github.com/ariel-frischer/envinit/internal/cli/config"
	"github.com/ariel-frischer/envinit/internal/cli/project"
	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/ariel-frischer/envinit/internal/cli/util"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/spf13/cobra"
)

// Command group IDs for organizing help output (re-exported from shared)
const (
	GroupGettingStarted = shared.GroupGettingStarted
	GroupConfiguration  = shared.GroupConfiguration
	GroupProject        = shared.GroupProject
	GroupMonitoring     = shared.GroupMonitoring
)

// DefaultSettingsPath is where project settings are read from.
const DefaultSettingsPath = ".envinit.yml"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envinit",
		Short: "Schema-driven config validation",
		Long: `envinit - Schema-Driven Config Validation

Validate YAML configs against a schema with types, defaults and custom
validators, load *_auth_path secrets, create project folders, and run
commands with per-step timing recorded in a metrics store.

Source: https://github.com/ariel-frischer/envinit`,
		Example: `  # Write a config template from a schema
  envinit generate --schema schema.yml

  # Check a config
  envinit validate config.yml

  # Create the folders it names
  envinit init-folders config.yml

  # Run a step under the monitor, then list runs
  envinit run config.yml --name extract -- python 2_extract/run.py
  envinit runs`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Define command groups in display order
	cmd.AddGroup(&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"})
	cmd.AddGroup(&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"})
	cmd.AddGroup(&cobra.Group{ID: GroupProject, Title: "Project:"})
	cmd.AddGroup(&cobra.Group{ID: GroupMonitoring, Title: "Monitoring:"})

	cmd.SetHelpCommandGroupID(GroupConfiguration)
	cmd.SetCompletionCommandGroupID(GroupConfiguration)

	// Global flags
	cmd.PersistentFlags().String(shared.FlagSettings, DefaultSettingsPath, "Path to project settings")
	cmd.PersistentFlags().StringP(shared.FlagSchema, "s", "", "Path to schema file (default: schema_path setting)")
	cmd.PersistentFlags().BoolP(shared.FlagDebug, "d", false, "Enable debug logging")

	// Register commands from subpackages
	config.Register(cmd)
	project.Register(cmd)
	util.Register(cmd)
	return cmd
}

// Execute runs the root command and prints any error worth reporting to
// stderr. The returned error carries the exit code, see ExitCode.
func Execute() error {
	err := rootCmd.Execute()
	if report := shared.Reportable(err); report != nil {
		apperrors.FprintError(rootCmd.ErrOrStderr(), report)
	}
	return err
}
