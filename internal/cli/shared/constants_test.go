package shared

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil":                {err: nil, want: ExitSuccess},
		"explicit":           {err: NewExitError(ExitFolderInitFailed), want: ExitFolderInitFailed},
		"explicit wrapped":   {err: fmt.Errorf("ctx: %w", NewExitError(7)), want: 7},
		"with cause":         {err: WithExitCode(ExitFolderInitFailed, apperrors.FolderInitFailed(errors.New("x"))), want: ExitFolderInitFailed},
		"configuration":      {err: apperrors.NewConfigError("bad"), want: ExitValidationFailed},
		"schema":             {err: apperrors.NewSchemaError("bad"), want: ExitValidationFailed},
		"argument":           {err: apperrors.NewArgumentError("bad"), want: ExitInvalidArguments},
		"prerequisite":       {err: apperrors.ConfigFileNotFound("c.yml"), want: ExitMissingDependency},
		"runtime":            {err: apperrors.NewRuntimeError("db"), want: ExitMissingDependency},
		"plain from parsing": {err: errors.New("unknown flag: --nope"), want: ExitInvalidArguments},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReportable(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Reportable(nil))
	assert.Nil(t, Reportable(NewExitError(ExitValidationFailed)))

	cliErr := apperrors.NewSchemaError("bad")
	assert.Same(t, cliErr, apperrors.AsCLIError(Reportable(WithExitCode(2, cliErr))))

	plain := Reportable(errors.New("accepts 1 arg(s), received 0"))
	got := apperrors.AsCLIError(plain)
	if assert.NotNil(t, got) {
		assert.Equal(t, apperrors.Argument, got.Category)
		assert.Equal(t, "accepts 1 arg(s), received 0", got.Message)
	}
}

func TestCenterText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "   abcd", CenterText("abcd", 10))
	assert.Equal(t, "toolong", CenterText("toolong", 4))
	for _, line := range Logo {
		assert.Len(t, []rune(line), LogoDisplayWidth)
	}
}
