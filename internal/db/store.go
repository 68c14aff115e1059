package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store provides key/value settings and the completion journal.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key, or empty if missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM config_kv WHERE key=?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read config %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO config_kv(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, ts); err != nil {
		return fmt.Errorf("write config %q: %w", key, err)
	}
	return nil
}

// StartSession records a tracking session, such as a replay or a served run.
func (s *Store) StartSession(ctx context.Context, sessionID, source string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sessions(session_id, started_at, source) VALUES(?, ?, ?)`,
		sessionID, ts, source); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Completion is an announced completion.
type Completion struct {
	SessionID   string
	Seq         int
	TS          string
	Name        string
	Requirement bool
	Message     string
}

// RecordCompletion appends a completion to the session's journal.
func (s *Store) RecordCompletion(ctx context.Context, c Completion) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin record completion: %w", err)
	}
	seq, err := nextSeq(ctx, tx, c.SessionID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO completions(session_id, seq, ts, name, requirement, message) VALUES(?, ?, ?, ?, ?, ?)`,
		c.SessionID, seq, ts, c.Name, boolInt(c.Requirement), c.Message); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert completion: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit completion: %w", err)
	}
	return nil
}

// Completions returns the most recent completions, newest first. A limit
// of zero or less returns all of them.
func (s *Store) Completions(ctx context.Context, limit int) ([]Completion, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, seq, ts, name, requirement, message FROM completions
		ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Completion
	for rows.Next() {
		var c Completion
		var req int
		if err := rows.Scan(&c.SessionID, &c.Seq, &c.TS, &c.Name, &req, &c.Message); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.Requirement = req != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read completions: %w", err)
	}
	return out, nil
}

func nextSeq(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	var seq int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM completions WHERE session_id=?`, sessionID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read completion seq: %w", err)
	}
	return seq + 1, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
