// Package memory provides an in-process document store. It backs unit tests
// and STORE_DRIVER=memory deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

var _ ports.Store = (*Store)(nil)

// Store keeps documents in maps guarded by a single mutex. Every document is
// deep-copied on the way in and out so callers can never alias stored state.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]abstractions.Document
	logger      *zap.Logger
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		collections: make(map[string]map[string]abstractions.Document),
		logger:      logger,
	}
}

func (s *Store) collection(name string) map[string]abstractions.Document {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]abstractions.Document)
		s.collections[name] = c
	}
	return c
}

// Insert stores a new document
func (s *Store) Insert(ctx context.Context, collection string, doc abstractions.Document) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.FromContext("insert", err)
	}
	id := doc.ID()
	if id == "" {
		return pkgerrors.NewValidationError("document id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c[id]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("%s %s already exists", collection, id))
	}
	if err := s.checkUnique(collection, id, doc); err != nil {
		return err
	}

	c[id] = doc.Clone()
	s.logger.Debug("Document inserted", zap.String("collection", collection), zap.String("id", id))
	return nil
}

// checkUnique must be called with the lock held
func (s *Store) checkUnique(collection, id string, doc abstractions.Document) error {
	for _, field := range abstractions.UniqueFields[collection] {
		value, ok := doc[field]
		if !ok || value == nil {
			continue
		}
		for otherID, other := range s.collections[collection] {
			if otherID == id {
				continue
			}
			if abstractions.Compare(other[field], value) == 0 {
				return pkgerrors.NewConflictError(fmt.Sprintf("%s with this %s already exists", collection, field)).
					WithDetails(map[string]interface{}{"field": field})
			}
		}
	}
	return nil
}

// FindByID returns a copy of the document or a not found error
func (s *Store) FindByID(ctx context.Context, collection, id string) (abstractions.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.FromContext("find", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(collection)
	}
	return doc.Clone(), nil
}

// Find returns copies of the matching documents
func (s *Store) Find(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.FromContext("find", err)
	}

	s.mu.RLock()
	matched := make([]abstractions.Document, 0)
	for _, doc := range s.collections[collection] {
		if abstractions.Matches(doc, criteria) {
			matched = append(matched, doc.Clone())
		}
	}
	s.mu.RUnlock()

	return abstractions.Window(matched, criteria), nil
}

// Count returns the number of matching documents
func (s *Store) Count(ctx context.Context, collection string, criteria abstractions.QueryCriteria) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, pkgerrors.FromContext("count", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.collections[collection] {
		if abstractions.Matches(doc, criteria) {
			n++
		}
	}
	return n, nil
}

// UpdateByID sets fields on an existing document
func (s *Store) UpdateByID(ctx context.Context, collection, id string, set abstractions.Document) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.FromContext("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return pkgerrors.NewNotFoundError(collection)
	}

	updated := doc.Clone()
	for k, v := range set.Clone() {
		if k == abstractions.FieldID {
			continue
		}
		updated[k] = v
	}
	if err := s.checkUnique(collection, id, updated); err != nil {
		return err
	}
	s.collections[collection][id] = updated
	return nil
}

// Push appends value to an array field
func (s *Store) Push(ctx context.Context, collection, id, field string, value interface{}) error {
	return s.mutate(ctx, "push", collection, id, func(doc abstractions.Document) error {
		doc[field] = append(doc.List(field), value)
		return nil
	})
}

// AddToSet appends value unless it is already present
func (s *Store) AddToSet(ctx context.Context, collection, id, field string, value interface{}) (bool, error) {
	added := false
	err := s.mutate(ctx, "add_to_set", collection, id, func(doc abstractions.Document) error {
		list := doc.List(field)
		for _, item := range list {
			if abstractions.Compare(item, value) == 0 {
				return nil
			}
		}
		doc[field] = append(list, value)
		added = true
		return nil
	})
	return added, err
}

// Pull removes every occurrence of value from an array field
func (s *Store) Pull(ctx context.Context, collection, id, field string, value interface{}) error {
	return s.mutate(ctx, "pull", collection, id, func(doc abstractions.Document) error {
		list := doc.List(field)
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if abstractions.Compare(item, value) != 0 {
				kept = append(kept, item)
			}
		}
		doc[field] = kept
		return nil
	})
}

// Increment adds delta to a numeric field, treating an absent field as 0
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) error {
	return s.mutate(ctx, "increment", collection, id, func(doc abstractions.Document) error {
		current := 0
		if raw, present := doc[field]; present && raw != nil {
			n, ok := raw.(int)
			if !ok {
				return pkgerrors.NewDatabaseError("increment",
					fmt.Errorf("cannot increment non-numeric field %s", field))
			}
			current = n
		}
		doc[field] = current + delta
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, op, collection, id string, fn func(abstractions.Document) error) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.FromContext(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return pkgerrors.NewNotFoundError(collection)
	}
	return fn(doc)
}

// Ping always succeeds unless the context is done
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.FromContext("ping", err)
	}
	return nil
}
