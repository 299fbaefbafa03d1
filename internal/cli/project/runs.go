package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/monitor"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recent tracked runs",
	Long: `List the most recent runs recorded in the metrics store, newest first.
With a run ID, show that run's sections and timings.`,
	Example: `  # Last 10 runs
  envinit runs

  # One run in detail
  envinit runs 5f0c6d2e-6f43-4a55-9d2b-0d7f3b1f6b8e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.GroupID = shared.GroupMonitoring
	runsCmd.Flags().IntP("limit", "l", 10, "Number of runs to list")
	runsCmd.Flags().Bool("json", false, "Print runs as JSON")
}

// runJSON is the --json form of an execution.
type runJSON struct {
	ID         string        `json:"id"`
	Script     string        `json:"script"`
	LogFile    string        `json:"log_file,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Status     string        `json:"status"`
	Sections   []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Failed     bool   `json:"failed"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	if limit <= 0 {
		return apperrors.NewArgumentError(fmt.Sprintf("--limit must be > 0, got %d", limit))
	}

	settings, err := shared.LoadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := monitor.Open(ctx, monitor.Config{
		Path:        settings.MetricsDB,
		LockRetries: settings.LockRetries,
		Logger:      shared.ConsoleLogger(cmd),
	})
	if err != nil {
		return apperrors.MetricsUnavailable(settings.MetricsDB, err)
	}
	defer store.Close()

	var execs []monitor.Execution
	if len(args) == 1 {
		e, err := store.Get(ctx, args[0])
		if errors.Is(err, monitor.ErrNotFound) {
			return apperrors.NewArgumentError(fmt.Sprintf("no run with ID %s", args[0]), "List run IDs with: envinit runs")
		}
		if err != nil {
			return apperrors.MetricsUnavailable(settings.MetricsDB, err)
		}
		execs = []monitor.Execution{e}
	} else {
		execs, err = store.Recent(ctx, limit)
		if err != nil {
			return apperrors.MetricsUnavailable(settings.MetricsDB, err)
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printRunsJSON(out, execs)
	}
	if len(execs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet")
		return nil
	}
	if len(args) == 1 {
		return printRunDetail(out, execs[0])
	}
	return printRunTable(out, execs)
}

func status(e monitor.Execution) string {
	switch {
	case !e.Finished():
		return "running"
	case e.Failed:
		return "failed"
	default:
		return "ok"
	}
}

func printRunTable(out io.Writer, execs []monitor.Execution) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCRIPT\tSTARTED\tDURATION\tSTATUS\tSECTIONS")
	for _, e := range execs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.ID, e.Script, e.StartedAt.Local().Format(time.DateTime),
			e.Duration().Round(time.Millisecond), status(e), len(e.Sections))
	}
	return w.Flush()
}

func printRunDetail(out io.Writer, e monitor.Execution) error {
	fmt.Fprintf(out, "Run:      %s\n", e.ID)
	fmt.Fprintf(out, "Script:   %s\n", e.Script)
	fmt.Fprintf(out, "Started:  %s\n", e.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Duration: %s\n", e.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "Status:   %s\n", status(e))
	if e.LogFile != "" {
		fmt.Fprintf(out, "Log file: %s\n", e.LogFile)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tDURATION\tSTATUS")
	for _, s := range e.Sections {
		st := "ok"
		if s.Failed {
			st = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Duration().Round(time.Millisecond), st)
	}
	return w.Flush()
}

func printRunsJSON(out io.Writer, execs []monitor.Execution) error {
	runs := make([]runJSON, len(execs))
	for i, e := range execs {
		runs[i] = runJSON{
			ID:         e.ID,
			Script:     e.Script,
			LogFile:    e.LogFile,
			StartedAt:  e.StartedAt,
			DurationMS: e.Duration().Milliseconds(),
			Status:     status(e),
			Sections:   make([]sectionJSON, len(e.Sections)),
		}
		for j, s := range e.Sections {
			runs[i].Sections[j] = sectionJSON{Name: s.Name, DurationMS: s.Duration().Milliseconds(), Failed: s.Failed}
		}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.Runtime)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
