package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SettingsStore keeps preference blobs in Postgres. Used by self-managed
// installs that mirror device preferences to a hosted database so several
// devices can share one profile.
type SettingsStore struct {
	db *sqlx.DB
}

func NewSettingsStore(db *sqlx.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// EnsureSchema creates the settings table when it does not exist yet.
func (s *SettingsStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS app_setting (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *SettingsStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM app_setting WHERE key = $1`

	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SettingsStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO app_setting (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM app_setting WHERE key = $1`

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
