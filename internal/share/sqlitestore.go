package share

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS video_shares (
    id              TEXT PRIMARY KEY,
    company_name    TEXT NOT NULL,
    activity        TEXT NOT NULL DEFAULT '',
    videos          TEXT NOT NULL,
    selected_videos TEXT NOT NULL,
    created_at      INTEGER NOT NULL
)`

// SQLiteStore keeps snapshots in a local SQLite file.
type SQLiteStore struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{DB: db}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// Exists reports whether id is already taken.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM video_shares WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertIfAbsent writes snap unless the id already exists.
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, snap Snapshot) (bool, error) {
	videos, selected, err := encodeIdeas(snap)
	if err != nil {
		return false, err
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO video_shares (id, company_name, activity, videos, selected_videos, created_at)
VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		snap.ID, snap.CompanyName, snap.Activity, string(videos), string(selected), snap.CreatedAt.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Get loads the snapshot stored under id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	var (
		snap             Snapshot
		videos, selected string
		createdMS        int64
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, company_name, activity, videos, selected_videos, created_at FROM video_shares WHERE id = ?`, id).
		Scan(&snap.ID, &snap.CompanyName, &snap.Activity, &videos, &selected, &createdMS)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	if err := decodeIdeas(&snap, []byte(videos), []byte(selected)); err != nil {
		return Snapshot{}, false, err
	}
	snap.CreatedAt = time.UnixMilli(createdMS).UTC()
	return snap, true, nil
}
