// Package store implements SQLite persistence for the play history, so
// recently played tracks survive restarts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pcahill/strum/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	track_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	uploader   TEXT NOT NULL DEFAULT '',
	duration   INTEGER NOT NULL DEFAULT 0,
	thumbnail  TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	played_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_played_at ON history (played_at DESC);
`

// HistoryStore persists played tracks to a SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// Open opens the history database at path, creating the file and schema as
// needed. The path ":memory:" yields an in-memory database.
func Open(path string) (*HistoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	// The store is written from callback goroutines; a single connection
	// sidesteps SQLite's writer lock contention.
	db.SetMaxOpenConns(1)

	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Append records a played track.
func (s *HistoryStore) Append(entry core.HistoryEntry) error {
	query := `
		INSERT INTO history (track_id, title, uploader, duration, thumbnail, source_url, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		entry.Track.ID,
		entry.Track.Title,
		entry.Track.Uploader,
		entry.Track.Duration,
		entry.Track.Thumbnail,
		entry.Track.SourceURL,
		entry.PlayedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recently played entries, newest first.
// A non-positive n returns all entries.
func (s *HistoryStore) Recent(n int) ([]core.HistoryEntry, error) {
	query := `
		SELECT track_id, title, uploader, duration, thumbnail, source_url, played_at
		FROM history
		ORDER BY played_at DESC, id DESC
	`
	args := []interface{}{}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var e core.HistoryEntry
		var playedAt time.Time
		if err := rows.Scan(
			&e.Track.ID,
			&e.Track.Title,
			&e.Track.Uploader,
			&e.Track.Duration,
			&e.Track.Thumbnail,
			&e.Track.SourceURL,
			&playedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.PlayedAt = playedAt
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}

// Prune deletes all but the newest keep entries. A non-positive keep is a
// no-op.
func (s *HistoryStore) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	query := `
		DELETE FROM history
		WHERE id NOT IN (SELECT id FROM history ORDER BY played_at DESC, id DESC LIMIT ?)
	`
	if _, err := s.db.Exec(query, keep); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *HistoryStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}
