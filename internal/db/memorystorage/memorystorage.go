// Package memorystorage provides a purely in-memory storage backend built
// on top of the jsondb cache. It is the default backend when neither a
// database DSN nor a storage file is configured, and the workhorse of the
// test suites.
package memorystorage

import (
	"context"

	"github.com/vishnucprasad/bookmarkapi/internal/db/jsondb"
)

// MemoryStorage is a jsondb without the backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	db := &MemoryStorage{
		JSONDB: &jsondb.JSONDB{},
	}
	db.Cache.Normalize()

	return db, nil
}

// Close discards the dataset; there is nothing to persist.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping always succeeds.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
