// Package logging builds the run logger: a console logger for INFO and up
// fanned out with a timestamped file logger that records every level the
// config allows.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Logger is the structured logger handed to config consumers.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

const (
	timeFormat      = "2006-01-02 15:04:05"
	microTimeFormat = "2006-01-02 15:04:05.000000"
	// FileTimestamp is the layout of the timestamp in log file names.
	FileTimestamp = "2006_01_02_150405"
)

// ParseLevel maps a config log level name to a charm level. Names are
// case-insensitive; WARNING and CRITICAL are accepted alongside charm's own
// names. An empty name means INFO.
func ParseLevel(name string) (charmlog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "INFO":
		return charmlog.InfoLevel, nil
	case "DEBUG":
		return charmlog.DebugLevel, nil
	case "WARNING", "WARN":
		return charmlog.WarnLevel, nil
	case "ERROR", "CRITICAL":
		return charmlog.ErrorLevel, nil
	default:
		return charmlog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Options configures New.
type Options struct {
	// Dir receives the log file. It is created if missing.
	Dir string
	// Prefix is prepended to the timestamped file name.
	Prefix string
	// Level is the minimum level written to the file.
	Level string
	// Microseconds adds microsecond precision to timestamps.
	Microseconds bool
	// Console receives INFO and up. Nil means stdout; io.Discard silences it.
	Console io.Writer
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Now defaults to time.Now and names the log file.
	Now func() time.Time
}

// Session is a Logger writing to the console and one log file.
type Session struct {
	loggers []*charmlog.Logger
	file    afero.File
	path    string
}

// New creates the log directory and file and returns the fan-out logger.
// The caller owns the session and must Close it.
func New(opts Options) (*Session, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if err := fs.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", opts.Dir, err)
	}
	path := filepath.Join(opts.Dir, opts.Prefix+now().Format(FileTimestamp)+".log")
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	format := timeFormat
	if opts.Microseconds {
		format = microTimeFormat
	}
	consoleLevel := level
	if consoleLevel < charmlog.InfoLevel {
		consoleLevel = charmlog.InfoLevel
	}

	return &Session{
		loggers: []*charmlog.Logger{
			newCharm(console, consoleLevel, format),
			newCharm(file, level, format),
		},
		file: file,
		path: path,
	}, nil
}

func newCharm(w io.Writer, level charmlog.Level, format string) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      format,
		Formatter:       charmlog.TextFormatter,
	})
}

// Path returns the log file path.
func (s *Session) Path() string {
	return s.path
}

// Close closes the log file. Loggers derived with With must not be used
// afterwards.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *Session) Debug(msg string, keyvals ...any) {
	for _, l := range s.loggers {
		l.Debug(msg, keyvals...)
	}
}

func (s *Session) Info(msg string, keyvals ...any) {
	for _, l := range s.loggers {
		l.Info(msg, keyvals...)
	}
}

func (s *Session) Warn(msg string, keyvals ...any) {
	for _, l := range s.loggers {
		l.Warn(msg, keyvals...)
	}
}

func (s *Session) Error(msg string, keyvals ...any) {
	for _, l := range s.loggers {
		l.Error(msg, keyvals...)
	}
}

// With returns a logger that adds keyvals to every record. The derived
// logger shares the session's file.
func (s *Session) With(keyvals ...any) Logger {
	child := &Session{path: s.path, loggers: make([]*charmlog.Logger, len(s.loggers))}
	for i, l := range s.loggers {
		child.loggers[i] = l.With(keyvals...)
	}
	return child
}

// NewConsole returns a console-only logger, used before a config provides a
// log directory.
func NewConsole(w io.Writer, level string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &Session{loggers: []*charmlog.Logger{newCharm(w, lvl, timeFormat)}}, nil
}

type nop struct{}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return nop{}
}

func (nop) Debug(string, ...any)  {}
func (nop) Info(string, ...any)   {}
func (nop) Warn(string, ...any)   {}
func (nop) Error(string, ...any)  {}
func (n nop) With(...any) Logger { return n }
