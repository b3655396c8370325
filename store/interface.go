// Package store persists per-user state as opaque values under string
// keys. Values are JSON documents written and read whole.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Key namespaces. A stored key is "<namespace>-<identity>".
const (
	NamespacePlan   = "timelineData"
	NamespaceEvents = "timelineEvents"

	// LastUserKey remembers the most recent signed-in identity.
	LastUserKey = "college-counselor-user"
)

// Supported drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ErrChecksumMismatch is returned when a stored value fails its
// integrity check.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// KVStore defines the persistence contract. Get reports absence with
// ok=false rather than an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the store, such as file locks
	// or database connections.
	Close() error
}

// Key builds a namespaced key for identity.
func Key(namespace, identity string) string {
	return namespace + "-" + identity
}

// Open creates a store for driver rooted at path. For the file driver
// path is a directory; for sqlite it is the database file or ":memory:".
func Open(driver, path string) (KVStore, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(afero.NewOsFs(), path)
	case DriverSQLite:
		if path != ":memory:" {
			path = filepath.Join(path, "vanessa.db")
		}
		return NewSQLiteStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s (supported: file, sqlite, memory)", driver)
	}
}
