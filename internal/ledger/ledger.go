// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of image conversions: which file
// was converted to which, the outcome, sizes before and after, and a
// checksum of the source image.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/to-webp/pkg/types"
)

// Entry is one recorded conversion attempt.
type Entry struct {
	ID          int64              `json:"id" yaml:"id"`
	Source      string             `json:"source" yaml:"source"`
	Target      string             `json:"target" yaml:"target"`
	Status      types.RecodeStatus `json:"status" yaml:"status"`
	SourceBytes int64              `json:"source_bytes" yaml:"source_bytes"`
	TargetBytes int64              `json:"target_bytes" yaml:"target_bytes"`
	Checksum    string             `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	RecordedAt  time.Time          `json:"recorded_at" yaml:"recorded_at"`
}

// ListOptions filters List results.
type ListOptions struct {
	Status types.RecodeStatus
	Limit  int
}

const defaultLimit = 50

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			status TEXT NOT NULL,
			source_bytes INTEGER NOT NULL DEFAULT 0,
			target_bytes INTEGER NOT NULL DEFAULT 0,
			checksum TEXT,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts e. A zero RecordedAt is set to the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (source, target, status, source_bytes, target_bytes, checksum, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Source, e.Target, string(e.Status), e.SourceBytes, e.TargetBytes,
		e.Checksum, e.Error, e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording conversion of %s: %w", e.Source, err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}

	query := `SELECT id, source, target, status, source_bytes, target_bytes,
		COALESCE(checksum, ''), COALESCE(error, ''), recorded_at FROM conversions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			recordedAt string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &status, &e.SourceBytes,
			&e.TargetBytes, &e.Checksum, &e.Error, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		e.Status = types.RecodeStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			e.RecordedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
