package cli

import (
	"github.com/ariel-frischer/envinit/internal/cli/shared"
)

// Exit codes for the envinit CLI (re-exported from shared)
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = shared.ExitSuccess

	// ExitValidationFailed indicates the config or schema is invalid
	ExitValidationFailed = shared.ExitValidationFailed

	// ExitFolderInitFailed indicates folder creation was refused or failed
	ExitFolderInitFailed = shared.ExitFolderInitFailed

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = shared.ExitInvalidArguments

	// ExitMissingDependency indicates a missing file, directory or command
	ExitMissingDependency = shared.ExitMissingDependency
)

// ExitCode returns the exit code for an error returned by Execute.
func ExitCode(err error) int {
	return shared.ExitCode(err)
}
