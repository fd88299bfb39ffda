package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const defaultBusyTimeoutMS = 5000

// Store is the SQLite-backed persistence layer.
//
// A single connection is kept open so in-memory databases stay consistent.
// mu serializes writes and guards closed. scoreMu spans a score upsert and
// the matching rank index update so both apply in the same order. At most one
// RUNNING test per page is enforced by a partial unique index.
type Store struct {
	db            *sql.DB
	path          string
	busyTimeoutMS int
	wal           bool
	logger        logger.Logger
	ranks         *RankIndex

	mu      sync.Mutex
	closed  bool
	scoreMu sync.Mutex
}

// Open creates (or opens) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:          path,
		busyTimeoutMS: defaultBusyTimeoutMS,
		logger:        logger.Get().Named("repository"),
		ranks:         NewRankIndex(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !inMemory(path) {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.warmRanks(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info(ctx, "database opened",
		logger.String("path", path), logger.Bool("wal", s.wal), logger.Int("ranked", s.ranks.Len()))
	return s, nil
}

func inMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

func (s *Store) configure(ctx context.Context) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeoutMS),
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	if s.wal && !inMemory(s.path) {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("configure %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// exec runs a write statement under the write lock and records its latency.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	metrics.RecordRepositoryUpdateLatency(op, sinceMS(start))
	if err != nil {
		metrics.RecordErrorByComponent("repository", op)
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	return res, nil
}

// observeQuery records read latency; call as defer s.observeQuery(op, time.Now()).
func (s *Store) observeQuery(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, sinceMS(start))
}

func sinceMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// translate maps driver errors to repository kinds.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %s", ErrConflict, se.Error())
	}
	return err
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
