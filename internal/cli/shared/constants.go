// Package shared provides constants and types used across CLI subpackages.
// This package has no dependencies on other CLI packages to avoid circular imports.
package shared

import (
	"errors"
	"fmt"

	apperrors "github.com/ariel-frischer/envinit/internal/errors"
)

// Command group IDs for organizing help output
const (
	GroupGettingStarted = "getting-started"
	GroupConfiguration  = "configuration"
	GroupProject        = "project"
	GroupMonitoring     = "monitoring"
)

// Exit codes for CLI commands
const (
	ExitSuccess           = 0
	ExitValidationFailed  = 1
	ExitFolderInitFailed  = 2
	ExitInvalidArguments  = 3
	ExitMissingDependency = 4
)

// exitError carries an exit code and, optionally, the error behind it.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

// NewExitError creates a new exit error with the given code. Nothing is
// printed for it; the command already reported the failure.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// WithExitCode attaches code to err. err is still printed.
func WithExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode returns the exit code from an error. Explicit codes win; CLI
// errors map by category; anything else came from argument parsing.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if cliErr := apperrors.AsCLIError(err); cliErr != nil {
		return categoryExitCode(cliErr.Category)
	}
	return ExitInvalidArguments
}

func categoryExitCode(c apperrors.ErrorCategory) int {
	switch c {
	case apperrors.Argument:
		return ExitInvalidArguments
	case apperrors.Prerequisite, apperrors.Runtime:
		return ExitMissingDependency
	default:
		return ExitValidationFailed
	}
}

// Reportable returns the error that should be shown to the user, or nil
// when err only carries an exit code.
func Reportable(err error) error {
	if err == nil {
		return nil
	}
	var e *exitError
	if errors.As(err, &e) && e.err == nil {
		return nil
	}
	if apperrors.IsCLIError(err) {
		return err
	}
	return apperrors.NewArgumentError(err.Error(), "Run with --help to see usage")
}
