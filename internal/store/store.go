// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

const busyTimeoutMs = 5000

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps SQLite access for users, sessions, and keystrokes.
// A Store returned by WithTx runs every query inside that transaction.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers; SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, q: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise. Nested calls reuse the outer
// transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = fn(&Store{db: s.db, q: tx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			target_text TEXT NOT NULL,
			user_input TEXT,
			started_at TEXT NOT NULL,
			typing_started_at TEXT,
			ended_at TEXT,
			duration_secs REAL,
			accuracy_percentage REAL,
			error_count INTEGER,
			correction_count INTEGER,
			words_per_minute REAL,
			characters_per_minute REAL
		);`,
		`CREATE TABLE IF NOT EXISTS keystroke_events (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			seq INTEGER NOT NULL,
			key TEXT NOT NULL,
			down_ts REAL NOT NULL,
			up_ts REAL NOT NULL,
			target_char TEXT,
			position_in_text INTEGER,
			is_correction TEXT,
			is_error TEXT,
			UNIQUE (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			dwell_sum_ms REAL NOT NULL,
			dwell_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS session_bigram_stats (
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			bigram TEXT NOT NULL,
			flight_sum_ms REAL NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, bigram)
		);`,
		`CREATE TABLE IF NOT EXISTS session_error_stats (
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_ended ON sessions(user_id, ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_keystroke_events_session ON keystroke_events(session_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_session_char_stats_char ON session_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
