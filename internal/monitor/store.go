// Package monitor records script executions and their timed sections in a
// SQLite database, so run durations and failures can be reviewed later.
package monitor

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/envinit/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var gooseMu sync.Mutex

const (
	// DefaultLockRetries is how often a write is retried on lock contention.
	DefaultLockRetries = 5
	// DefaultRetryDelay is the first backoff delay; it doubles per attempt.
	DefaultRetryDelay = 100 * time.Millisecond
	busyTimeout       = 30 * time.Second
)

// Config configures Open.
type Config struct {
	// Path is the database file. Parent directories are created.
	Path        string
	LockRetries int
	RetryDelay  time.Duration
	Logger      logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Store is an open metrics database.
type Store struct {
	db      *sql.DB
	retries uint64
	delay   time.Duration
	log     logging.Logger
	now     func() time.Time
}

// Open opens (creating if needed) the metrics database and applies the
// embedded migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("monitor: database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("monitor: creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("monitor: open database: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:      db,
		retries: DefaultLockRetries,
		delay:   DefaultRetryDelay,
		log:     cfg.Logger,
		now:     cfg.Now,
	}
	if cfg.LockRetries > 0 {
		s.retries = uint64(cfg.LockRetries)
	}
	if cfg.RetryDelay > 0 {
		s.delay = cfg.RetryDelay
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// buildDSN enables WAL with synchronous=NORMAL so concurrent scripts can
// read while one writes.
func buildDSN(path string) string {
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(ON)",
		fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()),
	}
	var sb strings.Builder
	sb.WriteString("file:")
	sb.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			sb.WriteString("?")
		} else {
			sb.WriteString("&")
		}
		sb.WriteString("_pragma=")
		sb.WriteString(p)
	}
	return sb.String()
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("monitor: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("monitor: apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for inspection.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// isLocked reports whether err is SQLite lock contention worth retrying.
func isLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// exec runs a write, retrying with exponential backoff while the database
// is locked by another process.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.delay))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		res, err := s.db.ExecContext(ctx, query, args...)
		if isLocked(err) {
			s.log.Debug("metrics database locked, retrying", "attempt", attempt)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("monitor: write failed after %d attempts: %w", attempt, err)
	}
	return result, nil
}
