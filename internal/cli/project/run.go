package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	cfgpkg "github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/monitor"
	"github.com/ariel-frischer/envinit/internal/progress"
	"github.com/ariel-frischer/envinit/internal/scaffold"
	"github.com/spf13/cobra"
)

const runUsage = "envinit run <config> [--name <script>] -- <command> [args...]"

// Environment passed to the command.
const (
	EnvRunID   = "ENVINIT_RUN_ID"
	EnvConfig  = "ENVINIT_CONFIG"
	EnvLogFile = "ENVINIT_LOG_FILE"
)

// Section names recorded in the metrics store.
const (
	SectionValidate = "validate config"
	SectionFolders  = "init folders"
	SectionCommand  = "command"
)

// capabilities is replaced in tests.
var capabilities = progress.DetectTerminalCapabilities

var runCmd = &cobra.Command{
	Use:   "run <config> -- <command> [args...]",
	Short: "Run a command with a validated config, tracked in the metrics store",
	Long: `Validate a config, create its folders, then run a command, timing each
step in the metrics store (metrics_db in .envinit.yml).

The command inherits the environment plus ENVINIT_RUN_ID, ENVINIT_CONFIG and
ENVINIT_LOG_FILE. Its exit code becomes envinit's exit code.`,
	Example: `  # Run an ETL step under the monitor
  envinit run config.yml --name extract -- python 2_extract/run.py

  # List what ran
  envinit runs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.GroupID = shared.GroupMonitoring
	runCmd.Flags().StringP("name", "n", "", "Script name to record (default: the command's base name)")
}

// runner shows and records the sections of one run.
type runner struct {
	run     *monitor.Run
	display *progress.ProgressDisplay
	total   int
	number  int
}

// section runs fn as the next section. interactive sections stop the
// spinner so the command owns the terminal.
func (r *runner) section(ctx context.Context, name string, interactive bool, fn func(context.Context) error) error {
	r.number++
	info := progress.SectionInfo{Name: name, Number: r.number, Total: r.total}
	if err := r.display.StartSection(info); err != nil {
		return err
	}
	if interactive {
		r.display.StopSpinner()
	}

	start := time.Now()
	err := r.run.RunSection(ctx, name, fn)
	if err != nil {
		r.display.FailSection(info, errors.New(firstLine(err.Error())))
		return err
	}
	r.display.CompleteSection(info, time.Since(start))
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 || dash >= len(args) {
		return apperrors.MissingCommand()
	}
	if dash != 1 {
		return apperrors.NewArgumentErrorWithUsage("run takes exactly one config before --", runUsage)
	}
	configPath, command := args[0], args[dash:]
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(command[0])
	}

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	schemaPath := shared.SchemaPath(cmd, settings)
	log := shared.ConsoleLogger(cmd)
	ctx := cmd.Context()

	store, err := monitor.Open(ctx, monitor.Config{
		Path:        settings.MetricsDB,
		LockRetries: settings.LockRetries,
		Logger:      log,
	})
	if err != nil {
		return apperrors.MetricsUnavailable(settings.MetricsDB, err)
	}
	defer store.Close()

	run, err := store.Start(ctx, name, "")
	if err != nil {
		return apperrors.MetricsUnavailable(settings.MetricsDB, err)
	}
	log.Debug("run started", "run_id", run.ID, "script", name)

	r := &runner{
		run:     run,
		display: progress.NewProgressDisplayTo(capabilities(), cmd.OutOrStdout(), cmd.ErrOrStderr()),
		total:   3,
	}

	var loaded *cfgpkg.Loaded
	defer func() {
		if loaded != nil {
			loaded.Close()
		}
	}()

	cause := r.section(ctx, SectionValidate, false, func(ctx context.Context) error {
		var err error
		loaded, err = cfgpkg.Load(cfgpkg.LoadOptions{
			ConfigPath: configPath,
			SchemaPath: schemaPath,
			WithLogger: true,
			Console:    cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		if path := loaded.LogFile(); path != "" {
			return run.SetLogFile(ctx, path)
		}
		return nil
	})
	if cause != nil {
		shared.PrintProblems(cmd.OutOrStdout(), cause)
		return finish(cmd, run, cause, shared.PipelineError(cause, configPath, schemaPath))
	}

	cause = r.section(ctx, SectionFolders, false, func(context.Context) error {
		_, err := scaffold.New(nil, loaded.Logger).InitFolders(loaded.Values, loaded.Root)
		return err
	})
	if cause != nil {
		return finish(cmd, run, cause,
			shared.WithExitCode(shared.ExitFolderInitFailed, apperrors.FolderInitFailed(cause)))
	}

	cause = r.section(ctx, SectionCommand, true, func(ctx context.Context) error {
		c := exec.CommandContext(ctx, command[0], command[1:]...)
		c.Stdin = cmd.InOrStdin()
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()
		c.Env = append(os.Environ(),
			EnvRunID+"="+run.ID,
			EnvConfig+"="+absPath(configPath),
			EnvLogFile+"="+loaded.LogFile(),
		)
		loaded.Logger.Info("running command", "run_id", run.ID, "command", strings.Join(command, " "))
		return c.Run()
	})
	if cause != nil {
		loaded.Logger.Error("command failed", "run_id", run.ID, "error", cause)
		return finish(cmd, run, cause, commandError(command[0], cause))
	}

	loaded.Logger.Info("run finished", "run_id", run.ID)
	return finish(cmd, run, nil, nil)
}

// finish records the end of the run and reports it. ret is what the
// command returns.
func finish(cmd *cobra.Command, run *monitor.Run, cause, ret error) error {
	// the run must be closed even when the command's context was cancelled
	ctx := context.WithoutCancel(cmd.Context())
	if err := run.Finish(ctx, cause); err != nil {
		shared.ConsoleLogger(cmd).Warn("could not record run end", "run_id", run.ID, "error", err)
	}

	colors := shared.NewColors()
	if cause != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s run %s failed\n", colors.Red("✗"), run.ID)
		return ret
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s run %s finished\n", colors.Green("✓"), run.ID)
	return nil
}

// commandError keeps the command's exit code; a command that could not
// start is a missing dependency.
func commandError(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 means killed by a signal
		if code := exitErr.ExitCode(); code > 0 {
			return shared.NewExitError(code)
		}
		return shared.NewExitError(shared.ExitValidationFailed)
	}
	return apperrors.WrapWithMessage(err, apperrors.Prerequisite,
		fmt.Sprintf("could not start %s", name),
		"Check that the command is installed and on PATH")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], ":")
	}
	return s
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
