// Package progress renders the sections of a monitored run: a counter, a
// spinner while a section runs on a terminal, and a status line when it ends.
package progress

import apperrors "github.com/ariel-frischer/envinit/internal/errors"

// SectionStatus represents the execution state of a run section
type SectionStatus int

const (
	// SectionPending indicates the section has not started yet
	SectionPending SectionStatus = iota
	// SectionRunning indicates the section is currently running
	SectionRunning
	// SectionCompleted indicates the section finished successfully
	SectionCompleted
	// SectionFailed indicates the section returned an error
	SectionFailed
)

// String returns the string representation of SectionStatus
func (s SectionStatus) String() string {
	switch s {
	case SectionPending:
		return "pending"
	case SectionRunning:
		return "running"
	case SectionCompleted:
		return "completed"
	case SectionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SectionInfo describes one section of a run for display
type SectionInfo struct {
	// Name is the human-readable section name (e.g., "validate config")
	Name string
	// Number is the section's 1-based position in the run
	Number int
	// Total is the number of sections in the run
	Total int
	Status SectionStatus
}

// Validate checks that all SectionInfo fields meet validation requirements
func (s SectionInfo) Validate() error {
	if s.Name == "" {
		return apperrors.NewArgumentError("section name cannot be empty")
	}
	if s.Number <= 0 {
		return apperrors.NewArgumentError("section number must be > 0")
	}
	if s.Total <= 0 {
		return apperrors.NewArgumentError("total sections must be > 0")
	}
	if s.Number > s.Total {
		return apperrors.NewArgumentError("section number cannot exceed total sections")
	}
	return nil
}

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether stdout is a terminal (vs pipe/redirect)
	IsTTY bool
	// SupportsColor indicates whether terminal supports ANSI color codes
	SupportsColor bool
	// SupportsUnicode indicates whether terminal supports Unicode characters
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// ProgressSymbols defines the character set for visual indicators
type ProgressSymbols struct {
	// Checkmark is the success indicator ("✓" or "[OK]")
	Checkmark string
	// Failure is the failure indicator ("✗" or "[FAIL]")
	Failure string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}
