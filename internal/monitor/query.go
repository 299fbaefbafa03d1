package monitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no execution has the requested ID.
var ErrNotFound = errors.New("monitor: execution not found")

// Execution is a recorded script run.
type Execution struct {
	ID        string
	Script    string
	LogFile   string
	StartedAt time.Time
	// EndedAt is zero while the run is still going or was never finished.
	EndedAt  time.Time
	Failed   bool
	Sections []Section
}

// Duration returns the run time, or zero for an unfinished run.
func (e Execution) Duration() time.Duration {
	if e.EndedAt.IsZero() {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}

// Finished reports whether Finish was recorded.
func (e Execution) Finished() bool {
	return !e.EndedAt.IsZero()
}

// Section is one timed part of an execution.
type Section struct {
	Name      string
	StartedAt time.Time
	EndedAt   time.Time
	Failed    bool
}

// Duration returns the section time, or zero for an unfinished section.
func (s Section) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Recent returns up to limit executions, newest first, with their sections.
func (s *Store) Recent(ctx context.Context, limit int) ([]Execution, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("monitor: limit must be positive, got %d", limit)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT execution_id, script_name, log_file, start_ms, end_ms, execution_failed
		 FROM script_executions ORDER BY start_ms DESC, execution_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("monitor: query executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: read executions: %w", err)
	}
	rows.Close()

	for i := range executions {
		sections, err := s.sections(ctx, executions[i].ID)
		if err != nil {
			return nil, err
		}
		executions[i].Sections = sections
	}
	return executions, nil
}

// Get returns one execution by ID.
func (s *Store) Get(ctx context.Context, id string) (Execution, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT execution_id, script_name, log_file, start_ms, end_ms, execution_failed
		 FROM script_executions WHERE execution_id = ?`, id)
	exec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Execution{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Execution{}, err
	}
	exec.Sections, err = s.sections(ctx, id)
	if err != nil {
		return Execution{}, err
	}
	return exec, nil
}

func (s *Store) sections(ctx context.Context, executionID string) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section_name, start_ms, end_ms, section_failed
		 FROM section_executions WHERE execution_id = ? ORDER BY section_id`, executionID)
	if err != nil {
		return nil, fmt.Errorf("monitor: query sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var (
			sec    Section
			start  int64
			end    sql.NullInt64
			failed int
		)
		if err := rows.Scan(&sec.Name, &start, &end, &failed); err != nil {
			return nil, fmt.Errorf("monitor: scan section: %w", err)
		}
		sec.StartedAt = time.UnixMilli(start)
		if end.Valid {
			sec.EndedAt = time.UnixMilli(end.Int64)
		}
		sec.Failed = failed != 0
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: read sections: %w", err)
	}
	return sections, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (Execution, error) {
	var (
		exec   Execution
		start  int64
		end    sql.NullInt64
		failed int
	)
	if err := row.Scan(&exec.ID, &exec.Script, &exec.LogFile, &start, &end, &failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Execution{}, err
		}
		return Execution{}, fmt.Errorf("monitor: scan execution: %w", err)
	}
	exec.StartedAt = time.UnixMilli(start)
	if end.Valid {
		exec.EndedAt = time.UnixMilli(end.Int64)
	}
	exec.Failed = failed != 0
	return exec, nil
}
