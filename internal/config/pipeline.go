package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ariel-frischer/envinit/internal/logging"
	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/sensitive"
	"github.com/ariel-frischer/envinit/internal/validation"
	"github.com/ariel-frischer/envinit/internal/validators"
)

// Keys the pipeline reads to build the run logger.
const (
	KeyLogDir          = "log_dir"
	KeyLogLevel        = "log_level"
	KeyLogPrefix       = "log_prefix"
	KeyLogMicroseconds = "log_microseconds"
)

// LoadOptions configures Load.
type LoadOptions struct {
	ConfigPath string
	// SchemaPath is read when Schema is nil.
	SchemaPath string
	// Schema and Registry may be supplied directly instead of a file.
	Schema   *schema.Schema
	Registry *validators.Registry
	// WithLogger builds the run logger from the log_* keys.
	WithLogger bool
	// Console receives console log output. Nil means stdout.
	Console io.Writer
}

// Loaded is a validated config with its derived sections.
type Loaded struct {
	Path string
	// Root is the project root: the directory holding the config file.
	// Relative paths in the config resolve against it.
	Root     string
	Schema   *schema.Schema
	Registry *validators.Registry
	// Values holds every schema key, passed-through keys, and the "auth"
	// section.
	Values map[string]any
	Auth   Auth
	Logger logging.Logger

	session *logging.Session
}

// Load runs the pipeline: schema load and self-check, config read, key
// normalization, validation, auth loading and logger construction.
// Content errors come back as *validation.Error, schema errors as
// *schema.CheckError and key collisions as *CollisionError; everything else
// is an infrastructure error.
func Load(opts LoadOptions) (*Loaded, error) {
	s, reg := opts.Schema, opts.Registry
	if s == nil {
		var err error
		s, reg, err = LoadSchema(opts.SchemaPath)
		if err != nil {
			return nil, err
		}
	}
	if err := schema.Check(s, reg); err != nil {
		return nil, err
	}

	raw, err := ReadFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	values, err := Validate(raw, s, reg)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.Dir(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	auth, err := LoadAuth(values, root)
	if err != nil {
		return nil, err
	}
	values[AuthKey] = map[string]map[string]sensitive.Secret(auth)

	loaded := &Loaded{
		Path:     opts.ConfigPath,
		Root:     root,
		Schema:   s,
		Registry: reg,
		Values:   values,
		Auth:     auth,
		Logger:   logging.NewNop(),
	}

	if opts.WithLogger {
		if err := loaded.startLogger(opts.Console); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// LoadSchema reads a schema file and its custom validator registrations.
func LoadSchema(path string) (*schema.Schema, *validators.Registry, error) {
	s, reg, err := schema.LoadFile(path)
	if err != nil {
		if errors.Is(err, schema.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, path)
		}
		return nil, nil, err
	}
	return s, reg, nil
}

// Validate normalizes raw keys and runs the validation engine. It is the
// I/O-free part of Load. A raw AuthKey is reported alongside the engine's
// errors since Load fills that section itself.
func Validate(raw map[string]any, s *schema.Schema, reg *validators.Registry) (map[string]any, error) {
	normalized, err := NormalizeKeys(raw)
	if err != nil {
		return nil, err
	}
	values, err := validation.Validate(normalized, s, reg)
	if _, taken := normalized[AuthKey]; !taken {
		return values, err
	}

	verr := &validation.Error{}
	if err != nil && !errors.As(err, &verr) {
		return nil, err
	}
	verr.Add(AuthKey, "key is reserved for credentials loaded from *%s files", AuthPathSuffix)
	return nil, verr
}

func (l *Loaded) startLogger(console io.Writer) error {
	dir, ok := l.Values[KeyLogDir].(string)
	if !ok || dir == "" {
		return nil
	}
	level, _ := l.Values[KeyLogLevel].(string)
	prefix, _ := l.Values[KeyLogPrefix].(string)
	micro, _ := l.Values[KeyLogMicroseconds].(bool)

	session, err := logging.New(logging.Options{
		Dir:          resolvePath(l.Root, dir),
		Prefix:       prefix,
		Level:        level,
		Microseconds: micro,
		Console:      console,
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	l.session = session
	l.Logger = session
	session.Debug("config loaded", "path", l.Path, "log_file", session.Path())
	return nil
}

// LogFile returns the run log path, or "" without a logger.
func (l *Loaded) LogFile() string {
	if l.session == nil {
		return ""
	}
	return l.session.Path()
}

// Close releases the log file.
func (l *Loaded) Close() error {
	if l.session == nil {
		return nil
	}
	return l.session.Close()
}

// Masked returns Values safe to print.
func (l *Loaded) Masked() map[string]any {
	return sensitive.MaskConfig(l.Values)
}

// String returns a string value, or "" when absent or not a string.
func (l *Loaded) String(key string) string {
	s, _ := l.Values[key].(string)
	return s
}

// ResolvePath resolves a config path value against the project root.
func (l *Loaded) ResolvePath(path string) string {
	return resolvePath(l.Root, path)
}
