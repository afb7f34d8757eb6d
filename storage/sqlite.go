package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at DESC);
`

// SQLiteStore keeps notes in a single-file SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, storageErr("open", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, storageErr("open", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, log: logger}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, storageErr("init schema", err)
	}
	logger.Debug("sqlite store opened", "path", path)
	return s, nil
}

// dsn builds a file: URI so that '?' and '#' in path stay part of the name.
func dsn(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}
	return u.String()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	if version == 0 {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, text string, createdAt int64) (Note, error) {
	id, err := newID()
	if err != nil {
		return Note{}, storageErr("create", err)
	}
	n := Note{ID: id, Text: text, CreatedAt: createdAt}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, text, created_at) VALUES (?, ?, ?)`,
		n.ID, n.Text, n.CreatedAt)
	if err != nil {
		return Note{}, storageErr("create", err)
	}
	s.log.Debug("note inserted", "id", n.ID)
	return n, nil
}

func (s *SQLiteStore) GetAll(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, created_at FROM notes`)
	if err != nil {
		return nil, storageErr("get all", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return nil, storageErr("get all", err)
		}
		notes = append(notes, n)
	}
	return notes, storageErr("get all", rows.Err())
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Note, error) {
	var n Note
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, created_at FROM notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.Text, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Note{}, storageErr("get", err)
	}
	return n, nil
}

func (s *SQLiteStore) Replace(ctx context.Context, n Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, text, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text, created_at = excluded.created_at
	`, n.ID, n.Text, n.CreatedAt)
	if err != nil {
		return storageErr("replace", err)
	}
	s.log.Debug("note replaced", "id", n.ID)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return storageErr("delete", err)
	}
	s.log.Debug("note deleted", "id", id)
	return nil
}
