package ports

import (
	"context"

	"forum-api/infrastructure/persistence/abstractions"
)

// Store defines the interface for document persistence.
// This is a port in hexagonal architecture - the application layer doesn't know
// which database sits behind it.
type Store interface {
	// Insert persists a new document. Unique-field violations return a conflict error.
	Insert(ctx context.Context, collection string, doc abstractions.Document) error

	// FindByID retrieves a document by its id, or a not found error
	FindByID(ctx context.Context, collection, id string) (abstractions.Document, error)

	// Find retrieves the documents matching criteria
	Find(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error)

	// Count returns how many documents match criteria. Sort, limit and fields are ignored.
	Count(ctx context.Context, collection string, criteria abstractions.QueryCriteria) (int64, error)

	// UpdateByID sets the given fields on an existing document
	UpdateByID(ctx context.Context, collection, id string, set abstractions.Document) error

	// Push appends value to the array stored under field
	Push(ctx context.Context, collection, id, field string, value interface{}) error

	// AddToSet appends value to the array under field unless it is already a member.
	// It reports whether the value was added.
	AddToSet(ctx context.Context, collection, id, field string, value interface{}) (bool, error)

	// Pull removes every occurrence of value from the array under field.
	// Removing a value that is not present is not an error.
	Pull(ctx context.Context, collection, id, field string, value interface{}) error

	// Increment atomically adds delta to a numeric field
	Increment(ctx context.Context, collection, id, field string, delta int) error

	// Ping checks connectivity with the backing database
	Ping(ctx context.Context) error
}
