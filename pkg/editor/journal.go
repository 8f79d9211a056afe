package editor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the upload state of a journal entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Entry is one recorded edit.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	MemberID  string
	Payload   Payload
	Status    Status
	Error     string
}

// Journal records every edit and its upload status in a SQLite database.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal at path. Use ":memory:" for a
// throwaway journal.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &Journal{db: db}
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS edits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		member_id TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		sheet_row INTEGER NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_edits_status ON edits(status);
	`
	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// Record stores p as a pending edit of memberID and returns its id.
func (j *Journal) Record(ctx context.Context, memberID string, p Payload) (int64, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO edits (created_at, member_id, action, sheet_row, payload, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, time.Now().UTC().Format(time.RFC3339Nano), memberID, p.Action, p.Row, string(raw), string(StatusPending))
	if err != nil {
		return 0, fmt.Errorf("record edit: %w", err)
	}
	return res.LastInsertId()
}

// Mark sets the status of entry id. cause, if non-nil, is stored as the
// entry's error text; a nil cause clears it.
func (j *Journal) Mark(ctx context.Context, id int64, status Status, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := j.db.ExecContext(ctx, `UPDATE edits SET status = ?, error = ? WHERE id = ?`, string(status), msg, id)
	if err != nil {
		return fmt.Errorf("mark edit %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark edit %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// List returns entries in insertion order. An empty status lists all
// entries; limit <= 0 means no limit.
func (j *Journal) List(ctx context.Context, status Status, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, member_id, payload, status, error FROM edits`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt string
			payload   string
			st        string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.MemberID, &payload, &st, &e.Error); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		e.Status = Status(st)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("decode edit %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
