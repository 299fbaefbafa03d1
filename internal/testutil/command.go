package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs args against a fresh root that carries the global flags and
// the commands added by register. Stdout and stderr are captured together.
// The settings flag defaults to a file that does not exist.
func Execute(t *testing.T, register func(*cobra.Command), args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "envinit", SilenceErrors: true, SilenceUsage: true}
	root.AddGroup(
		&cobra.Group{ID: shared.GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: shared.GroupProject, Title: "Project:"},
		&cobra.Group{ID: shared.GroupMonitoring, Title: "Monitoring:"},
	)
	root.PersistentFlags().String(shared.FlagSettings, filepath.Join(t.TempDir(), "none.yml"), "")
	root.PersistentFlags().String(shared.FlagSchema, "", "")
	root.PersistentFlags().Bool(shared.FlagDebug, false, "")
	register(root)
	ResetFlags(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ResetFlags restores flag defaults left over from earlier executions of
// package-level commands.
func ResetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		ResetFlags(sub)
	}
}
