package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL DEFAULT '',
	screenshot BLOB NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
)`

// SQLiteStore saves snapshots to a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements Store. The returned ID is the row ID.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) (string, error) {
	snap = stamp(snap)
	meta, err := json.Marshal(snap.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if snap.Metadata == nil {
		meta = []byte("{}")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, screenshot, metadata, created_at) VALUES (?, ?, ?, ?)`,
		snap.SessionID, snap.PNG, string(meta), snap.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// Recent returns up to limit snapshots, newest first. An empty sessionID
// matches every session.
func (s *SQLiteStore) Recent(ctx context.Context, sessionID string, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, screenshot, metadata, created_at FROM snapshots
		 WHERE ? = '' OR session_id = ?
		 ORDER BY id DESC LIMIT ?`,
		sessionID, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			snap    Snapshot
			id      int64
			meta    string
			created string
		)
		if err := rows.Scan(&id, &snap.SessionID, &snap.PNG, &meta, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.ID = strconv.FormatInt(id, 10)
		if err := json.Unmarshal([]byte(meta), &snap.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of snapshot %d: %w", id, err)
		}
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("decode time of snapshot %d: %w", id, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
