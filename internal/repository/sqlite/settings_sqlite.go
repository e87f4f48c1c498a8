package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_setting (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SettingsStore persists preference blobs in a local SQLite database. This is
// the default backend for single-device installs.
type SettingsStore struct {
	db *sqlx.DB
}

// New opens (creating if necessary) the settings database at path.
func New(path string) (*SettingsStore, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SettingsStore{db: db}, nil
}

func (s *SettingsStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM app_setting WHERE key = ?`

	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SettingsStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO app_setting (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM app_setting WHERE key = ?`

	result, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *SettingsStore) Close() error {
	return s.db.Close()
}
