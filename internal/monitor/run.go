package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrFinished is returned when a finished run is used again.
var ErrFinished = errors.New("monitor: run already finished")

// Run is one tracked script execution.
type Run struct {
	ID     string
	Script string

	store    *Store
	failed   bool
	finished bool
}

// Start records the beginning of a script execution. logFile may be empty.
func (s *Store) Start(ctx context.Context, script, logFile string) (*Run, error) {
	run := &Run{ID: uuid.NewString(), Script: script, store: s}
	_, err := s.exec(ctx,
		`INSERT INTO script_executions (execution_id, script_name, log_file, start_ms) VALUES (?, ?, ?, ?)`,
		run.ID, script, logFile, s.nowMillis())
	if err != nil {
		return nil, err
	}
	s.log.Debug("execution started", "run_id", run.ID, "script", script)
	return run, nil
}

// RunSection times fn and records it under name. A failing or panicking
// section marks the whole run failed. fn's error is returned unchanged; a
// recording error is returned only when fn succeeded.
func (r *Run) RunSection(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	if r.finished {
		return ErrFinished
	}
	res, err := r.store.exec(ctx,
		`INSERT INTO section_executions (execution_id, section_name, start_ms) VALUES (?, ?, ?)`,
		r.ID, name, r.store.nowMillis())
	if err != nil {
		return err
	}
	sectionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("monitor: reading section id: %w", err)
	}

	panicked := true
	defer func() {
		failed := panicked || err != nil
		if failed {
			r.failed = true
		}
		_, endErr := r.store.exec(context.WithoutCancel(ctx),
			`UPDATE section_executions SET end_ms = ?, section_failed = ? WHERE section_id = ?`,
			r.store.nowMillis(), boolInt(failed), sectionID)
		if endErr != nil && err == nil && !panicked {
			err = endErr
		}
	}()

	err = fn(ctx)
	panicked = false
	return err
}

// SetLogFile records the log file of a run whose logger was built after
// Start.
func (r *Run) SetLogFile(ctx context.Context, path string) error {
	if r.finished {
		return ErrFinished
	}
	_, err := r.store.exec(ctx,
		`UPDATE script_executions SET log_file = ? WHERE execution_id = ?`, path, r.ID)
	return err
}

// Fail marks the run failed without finishing it.
func (r *Run) Fail() {
	r.failed = true
}

// Failed reports whether any section failed or Fail was called.
func (r *Run) Failed() bool {
	return r.failed
}

// Finish records the end of the run. A non-nil cause marks it failed.
// Finishing twice returns ErrFinished.
func (r *Run) Finish(ctx context.Context, cause error) error {
	if r.finished {
		return ErrFinished
	}
	if cause != nil {
		r.failed = true
	}
	_, err := r.store.exec(ctx,
		`UPDATE script_executions SET end_ms = ?, execution_failed = ? WHERE execution_id = ?`,
		r.store.nowMillis(), boolInt(r.failed), r.ID)
	if err != nil {
		return err
	}
	r.finished = true
	r.store.log.Debug("execution finished", "run_id", r.ID, "failed", r.failed)
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
