package ports

import "context"

// SettingsStore is a process-wide, key-addressed persistent store. Values are
// opaque blobs; writes replace the whole value atomically. Implementations
// report a missing key with sql.ErrNoRows.
type SettingsStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
