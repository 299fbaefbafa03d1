package shared

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/validation"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineError(t *testing.T) {
	t.Parallel()

	verr := &validation.Error{}
	verr.Add("timeout", "is required")
	verr.Add("log_level", "must be one of DEBUG, INFO")

	tests := map[string]struct {
		err          error
		wantCategory apperrors.ErrorCategory
		wantContains string
		wantExit     int
	}{
		"config missing": {
			err:          fmt.Errorf("%w: c.yml", config.ErrConfigNotFound),
			wantCategory: apperrors.Prerequisite,
			wantContains: "config file not found: c.yml",
			wantExit:     ExitMissingDependency,
		},
		"schema missing": {
			err:          fmt.Errorf("%w: s.yml", config.ErrSchemaNotFound),
			wantCategory: apperrors.Prerequisite,
			wantContains: "schema file not found: s.yml",
			wantExit:     ExitMissingDependency,
		},
		"auth file": {
			err:          fmt.Errorf("%w: db_auth_path: missing", config.ErrAuthFile),
			wantCategory: apperrors.Configuration,
			wantContains: "db_auth_path",
			wantExit:     ExitValidationFailed,
		},
		"validation": {
			err:          verr,
			wantCategory: apperrors.Configuration,
			wantContains: "c.yml failed validation with 2 problems",
			wantExit:     ExitValidationFailed,
		},
		"collision": {
			err:          &config.CollisionError{Collisions: []config.Collision{{Key: "a_b", Originals: []string{"A B", "a_b"}}}},
			wantCategory: apperrors.Configuration,
			wantContains: "1 problem",
			wantExit:     ExitValidationFailed,
		},
		"schema check": {
			err:          &schema.CheckError{Schema: "s", Errors: []string{"timeout: unknown type"}},
			wantCategory: apperrors.Schema,
			wantContains: "timeout: unknown type",
			wantExit:     ExitValidationFailed,
		},
		"yaml syntax": {
			err:          &config.FileError{FilePath: "c.yml", Line: 3, Column: 1, Message: "bad indent"},
			wantCategory: apperrors.Configuration,
			wantContains: "failed to parse c.yml",
			wantExit:     ExitValidationFailed,
		},
		"anything else": {
			err:          errors.New("disk on fire"),
			wantCategory: apperrors.Runtime,
			wantContains: "disk on fire",
			wantExit:     ExitMissingDependency,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := PipelineError(tt.err, "c.yml", "s.yml")
			cliErr := apperrors.AsCLIError(got)
			require.NotNil(t, cliErr)
			assert.Equal(t, tt.wantCategory, cliErr.Category)
			assert.Contains(t, cliErr.Message, tt.wantContains)
			assert.Equal(t, tt.wantExit, ExitCode(got))
		})
	}
}

func TestPrintProblems(t *testing.T) {
	t.Parallel()

	verr := &validation.Error{}
	verr.Add("timeout", "is required")

	var out bytes.Buffer
	assert.True(t, PrintProblems(&out, verr))
	assert.Contains(t, out.String(), "[timeout] is required")

	out.Reset()
	assert.True(t, PrintProblems(&out, &config.CollisionError{Collisions: []config.Collision{{Key: "a_b", Originals: []string{"A B", "a_b"}}}}))
	assert.Contains(t, out.String(), "[a_b] produced by keys [A B a_b]")

	out.Reset()
	assert.False(t, PrintProblems(&out, errors.New("other")))
	assert.Empty(t, out.String())
}

func TestSchemaPathAndDebug(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String(FlagSchema, "", "")
	root.PersistentFlags().Bool(FlagDebug, false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	settings := &config.Settings{SchemaPath: "from-settings.yml"}
	assert.Equal(t, "from-settings.yml", SchemaPath(child, settings))
	assert.False(t, Debug(child))

	require.NoError(t, root.PersistentFlags().Set(FlagSchema, "flag.yml"))
	require.NoError(t, root.PersistentFlags().Set(FlagDebug, "true"))
	assert.Equal(t, "flag.yml", SchemaPath(child, settings))
	assert.True(t, Debug(child))
}
