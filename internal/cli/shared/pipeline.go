package shared

import (
	"errors"
	"fmt"
	"io"

	"github.com/ariel-frischer/envinit/internal/config"
	apperrors "github.com/ariel-frischer/envinit/internal/errors"
	"github.com/ariel-frischer/envinit/internal/logging"
	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/validation"
	"github.com/ariel-frischer/envinit/internal/validators"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Flag names registered on the root command and read by every subcommand.
const (
	FlagSettings = "settings"
	FlagSchema   = "schema"
	FlagDebug    = "debug"
)

// LoadSettings loads envinit settings, reading the project file named by
// --settings.
func LoadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.LoadSettings(flagString(cmd, FlagSettings))
	if err != nil {
		return nil, apperrors.WrapWithMessage(err, apperrors.Configuration, "loading envinit settings",
			"Check .envinit.yml, ~/.config/envinit/config.yml and ENVINIT_* variables")
	}
	if s.NoColor {
		color.NoColor = true
	}
	return s, nil
}

// SchemaPath returns --schema when given, else the configured schema_path.
func SchemaPath(cmd *cobra.Command, s *config.Settings) string {
	if f := cmd.Flag(FlagSchema); f != nil && f.Changed {
		return f.Value.String()
	}
	return s.SchemaPath
}

// Debug reports whether --debug is set.
func Debug(cmd *cobra.Command) bool {
	return flagString(cmd, FlagDebug) == "true"
}

// ConsoleLogger returns a logger on the command's stderr, at DEBUG with
// --debug and INFO otherwise.
func ConsoleLogger(cmd *cobra.Command) logging.Logger {
	level := "INFO"
	if Debug(cmd) {
		level = "DEBUG"
	}
	log, err := logging.NewConsole(cmd.ErrOrStderr(), level)
	if err != nil {
		return logging.NewNop()
	}
	return log
}

func flagString(cmd *cobra.Command, name string) string {
	f := cmd.Flag(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// LoadSchema reads and self-checks the schema at path.
func LoadSchema(path string) (*schema.Schema, *validators.Registry, error) {
	s, reg, err := config.LoadSchema(path)
	if err != nil {
		return nil, nil, SchemaError(err, path)
	}
	if err := schema.Check(s, reg); err != nil {
		return nil, nil, apperrors.InvalidSchema(err)
	}
	return s, reg, nil
}

// SchemaError turns a schema loading error into a CLI error.
func SchemaError(err error, path string) error {
	if errors.Is(err, config.ErrSchemaNotFound) {
		return apperrors.SchemaFileNotFound(path)
	}
	return apperrors.InvalidSchema(err)
}

// PipelineError turns a config.Load error into a CLI error. Validation
// problems are not listed; see PrintProblems.
func PipelineError(err error, configPath, schemaPath string) error {
	var (
		verr      *validation.Error
		collision *config.CollisionError
		checkErr  *schema.CheckError
		fileErr   *config.FileError
	)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return apperrors.ConfigFileNotFound(configPath)
	case errors.Is(err, config.ErrSchemaNotFound):
		return apperrors.SchemaFileNotFound(schemaPath)
	case errors.Is(err, config.ErrAuthFile):
		return apperrors.AuthFileError(err)
	case errors.As(err, &verr):
		return apperrors.ConfigInvalid(configPath, len(verr.Errors), err)
	case errors.As(err, &collision):
		return apperrors.ConfigInvalid(configPath, len(collision.Collisions), err)
	case errors.As(err, &checkErr):
		return apperrors.InvalidSchema(err)
	case errors.As(err, &fileErr):
		return apperrors.ConfigParseError(fileErr.FilePath, err)
	default:
		return apperrors.Wrap(err, apperrors.Runtime)
	}
}

// Problems returns the field problems carried by err as "[key] message"
// lines, or nil when err is not a content error.
func Problems(err error) []string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	var collision *config.CollisionError
	if errors.As(err, &collision) {
		lines := make([]string, len(collision.Collisions))
		for i, c := range collision.Collisions {
			lines[i] = fmt.Sprintf("[%s] produced by keys %v", c.Key, c.Originals)
		}
		return lines
	}
	return nil
}

// PrintProblems lists the field problems carried by err, one per line. It
// reports whether anything was printed.
func PrintProblems(w io.Writer, err error) bool {
	problems := Problems(err)
	if len(problems) == 0 {
		return false
	}
	red := color.New(color.FgRed).SprintFunc()
	for _, p := range problems {
		fmt.Fprintf(w, "  %s %s\n", red("✗"), p)
	}
	return true
}
