// Package history keeps a bounded local record of past quiz sessions.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the local quiz history database.
type Store struct {
	db  *sql.DB
	max int
}

// Open creates a Store connected to the SQLite database at dsn, capped at
// max records. It applies recommended pragmas and creates the schema.
func Open(dsn string, max int) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, max: max}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS quiz_history (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	problem_set_id TEXT NOT NULL UNIQUE,
	file_name      TEXT NOT NULL,
	file_size      INTEGER NOT NULL,
	question_count INTEGER NOT NULL,
	quiz_level     TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	uploaded_url   TEXT NOT NULL,
	status         TEXT NOT NULL,
	score          INTEGER,
	correct_count  INTEGER,
	total_questions INTEGER,
	total_time_secs INTEGER,
	completed_at   TIMESTAMP,
	quiz_data      TEXT
);
CREATE INDEX IF NOT EXISTS idx_quiz_history_status ON quiz_history (status);
`

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZDECK_DB environment variable
// 2. $XDG_DATA_HOME/quizdeck/quizdeck.db
// 3. ~/.local/share/quizdeck/quizdeck.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZDECK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizdeck", "quizdeck.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
