// Package ledger persists an audit trail of patch applications to SQLite.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded patch application.
type Entry struct {
	ID        int64
	AppliedAt time.Time
	Title     string
	Author    string
	Success   bool
	Files     []string
	Errors    []string
}

// Ledger wraps a SQLite database holding patch history.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path and applies
// pending migrations.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger migration failed: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record stores an entry and returns its row ID. A zero AppliedAt is filled
// with the current time.
func (l *Ledger) Record(ctx context.Context, e Entry) (int64, error) {
	appliedAt := e.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}
	files, err := json.Marshal(e.Files)
	if err != nil {
		return 0, err
	}
	errs, err := json.Marshal(e.Errors)
	if err != nil {
		return 0, err
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO patches(applied_at, title, author, success, files, errors) VALUES(?,?,?,?,?,?)`,
		appliedAt.Format(time.RFC3339Nano), e.Title, e.Author, boolToInt(e.Success), string(files), string(errs))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns the most recent entries, newest first.
func (l *Ledger) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, applied_at, title, author, success, files, errors FROM patches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			appliedAt string
			success   int
			files     string
			errsJSON  string
		)
		if err := rows.Scan(&e.ID, &appliedAt, &e.Title, &e.Author, &success, &files, &errsJSON); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, appliedAt); err == nil {
			e.AppliedAt = ts
		}
		e.Success = success != 0
		if err := json.Unmarshal([]byte(files), &e.Files); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(errsJSON), &e.Errors); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
