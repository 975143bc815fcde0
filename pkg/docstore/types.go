// Package docstore defines the document store adapter used by the sync
// engine. A Store is the single source of truth for resource state; the
// engine keeps no cache of its own.
package docstore

import (
	"context"

	"github.com/dsx-project/dsx/pkg/models"
)

// Store persists documents keyed by models.Document.Key. Every operation is
// idempotent and fails fast with ErrUnavailable while the backing store is
// unreachable.
type Store interface {
	// Upsert inserts the document or writes its fields over the stored
	// record with the same key. Fields explicitly set to null are stored as
	// null; fields absent from the document are left untouched.
	Upsert(ctx context.Context, doc models.Document) error
	// Update merges the non-null attributes into the record at key and
	// reports whether a record was written. Missing keys, and attributes
	// that are all null, are a no-op and not an error.
	Update(ctx context.Context, key string, attributes models.Attributes) (bool, error)
	// FindOne returns the record at key, or ErrNotFound.
	FindOne(ctx context.Context, key string) (models.Document, error)
	// FindAll returns a snapshot of every record.
	FindAll(ctx context.Context) ([]models.Document, error)
	// DeleteOne removes the record at key. Missing keys are a no-op.
	DeleteOne(ctx context.Context, key string) error
	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
	// Available reports whether operations are currently expected to succeed.
	Available() bool
	// Close releases the store resources.
	Close(ctx context.Context) error
}

// Connector is implemented by backends that need to establish a connection
// before serving operations. They are wrapped by supervised.Store.
type Connector interface {
	Store
	// Connect establishes the connection to the backing store.
	Connect(ctx context.Context) error
}
