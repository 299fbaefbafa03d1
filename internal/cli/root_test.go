package cli

import (
	"bytes"
	"testing"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/ariel-frischer/envinit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Commands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]string)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = sub.GroupID
	}

	tests := map[string]string{
		"validate":     GroupGettingStarted,
		"generate":     GroupGettingStarted,
		"version":      GroupGettingStarted,
		"schema":       GroupConfiguration,
		"config":       GroupConfiguration,
		"init-folders": GroupProject,
		"tree":         GroupProject,
		"logs":         GroupProject,
		"run":          GroupMonitoring,
		"runs":         GroupMonitoring,
	}
	for name, group := range tests {
		got, ok := names[name]
		if assert.True(t, ok, "missing command %q", name) {
			assert.Equal(t, group, got, "group of %q", name)
		}
	}
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCmd()

	settings := cmd.PersistentFlags().Lookup(shared.FlagSettings)
	require.NotNil(t, settings)
	assert.Equal(t, DefaultSettingsPath, settings.DefValue)

	schema := cmd.PersistentFlags().Lookup(shared.FlagSchema)
	require.NotNil(t, schema)
	assert.Equal(t, "s", schema.Shorthand)

	debug := cmd.PersistentFlags().Lookup(shared.FlagDebug)
	require.NotNil(t, debug)
	assert.Equal(t, "d", debug.Shorthand)
}

func TestRootCommand_Execute(t *testing.T) {
	tests := map[string]struct {
		args     []string
		wantCode int
		wantOut  string
	}{
		"version": {
			args:     []string{"version", "--plain"},
			wantCode: ExitSuccess,
			wantOut:  "envinit dev",
		},
		"unknown command": {
			args:     []string{"frobnicate"},
			wantCode: ExitInvalidArguments,
		},
		"missing argument": {
			args:     []string{"validate"},
			wantCode: ExitInvalidArguments,
		},
		"missing config file": {
			args:     []string{"validate", "does-not-exist.yml", "--schema", "nope.yml"},
			wantCode: ExitMissingDependency,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.IsolateEnv(t)

			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			assert.Equal(t, tt.wantCode, ExitCode(err), "err: %v", err)
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}
