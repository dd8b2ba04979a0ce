// Package history keeps a local ledger of placed media.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/CrushDope/Telegram-Assistant/internal/classify"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
)

// Store persists placement results in an embedded SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(dbPath string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: log.With(slog.String("service", "history"))}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS placements (
		id          TEXT PRIMARY KEY,
		message_id  TEXT NOT NULL,
		group_id    TEXT,
		category    TEXT NOT NULL,
		title       TEXT NOT NULL,
		intro       TEXT,
		file_name   TEXT NOT NULL,
		path        TEXT NOT NULL,
		directory   TEXT NOT NULL,
		placed_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_placements_placed ON placements(placed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record implements ingest.Recorder.
func (s *Store) Record(ctx context.Context, res ingest.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO placements (id, message_id, group_id, category, title, intro, file_name, path, directory, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.MessageID, res.GroupID, string(res.Category), res.Title,
		res.Intro, res.FileName, res.Path, res.Directory, res.PlacedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// Recent returns the latest placements, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ingest.Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, group_id, category, title, intro, file_name, path, directory, placed_at
		 FROM placements ORDER BY placed_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []ingest.Result
	for rows.Next() {
		var res ingest.Result
		var groupID, intro sql.NullString
		var category string
		var placedAt time.Time
		if err := rows.Scan(&res.ID, &res.MessageID, &groupID, &category, &res.Title,
			&intro, &res.FileName, &res.Path, &res.Directory, &placedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		res.GroupID = groupID.String
		res.Intro = intro.String
		res.Category = classify.Category(category)
		res.PlacedAt = placedAt
		results = append(results, res)
	}
	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
