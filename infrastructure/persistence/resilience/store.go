// Package resilience decorates any ports.Store with cross-cutting concerns:
// metrics, tracing, circuit breaking and error translation.
package resilience

import (
	"context"

	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
)

// Operation names one store call
type Operation struct {
	Name       string
	Collection string
}

// Interceptor wraps one store call. It must call next at most once.
type Interceptor func(ctx context.Context, op Operation, next func(context.Context) error) error

// Store runs every call of the inner store through a chain of interceptors
type Store struct {
	inner        ports.Store
	interceptors []Interceptor
}

var _ ports.Store = (*Store)(nil)

// Decorate wraps inner. The first interceptor is the outermost.
func Decorate(inner ports.Store, interceptors ...Interceptor) ports.Store {
	if len(interceptors) == 0 {
		return inner
	}
	return &Store{inner: inner, interceptors: interceptors}
}

func (s *Store) run(ctx context.Context, op Operation, call func(context.Context) error) error {
	var next func(int) func(context.Context) error
	next = func(i int) func(context.Context) error {
		if i == len(s.interceptors) {
			return call
		}
		return func(ctx context.Context) error {
			return s.interceptors[i](ctx, op, next(i+1))
		}
	}
	return next(0)(ctx)
}

func (s *Store) Insert(ctx context.Context, collection string, doc abstractions.Document) error {
	return s.run(ctx, Operation{"insert", collection}, func(ctx context.Context) error {
		return s.inner.Insert(ctx, collection, doc)
	})
}

func (s *Store) FindByID(ctx context.Context, collection, id string) (abstractions.Document, error) {
	var doc abstractions.Document
	err := s.run(ctx, Operation{"find_by_id", collection}, func(ctx context.Context) error {
		var err error
		doc, err = s.inner.FindByID(ctx, collection, id)
		return err
	})
	return doc, err
}

func (s *Store) Find(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	var docs []abstractions.Document
	err := s.run(ctx, Operation{"find", collection}, func(ctx context.Context) error {
		var err error
		docs, err = s.inner.Find(ctx, collection, criteria)
		return err
	})
	return docs, err
}

func (s *Store) Count(ctx context.Context, collection string, criteria abstractions.QueryCriteria) (int64, error) {
	var n int64
	err := s.run(ctx, Operation{"count", collection}, func(ctx context.Context) error {
		var err error
		n, err = s.inner.Count(ctx, collection, criteria)
		return err
	})
	return n, err
}

func (s *Store) UpdateByID(ctx context.Context, collection, id string, set abstractions.Document) error {
	return s.run(ctx, Operation{"update", collection}, func(ctx context.Context) error {
		return s.inner.UpdateByID(ctx, collection, id, set)
	})
}

func (s *Store) Push(ctx context.Context, collection, id, field string, value interface{}) error {
	return s.run(ctx, Operation{"push", collection}, func(ctx context.Context) error {
		return s.inner.Push(ctx, collection, id, field, value)
	})
}

func (s *Store) AddToSet(ctx context.Context, collection, id, field string, value interface{}) (bool, error) {
	var added bool
	err := s.run(ctx, Operation{"add_to_set", collection}, func(ctx context.Context) error {
		var err error
		added, err = s.inner.AddToSet(ctx, collection, id, field, value)
		return err
	})
	return added, err
}

func (s *Store) Pull(ctx context.Context, collection, id, field string, value interface{}) error {
	return s.run(ctx, Operation{"pull", collection}, func(ctx context.Context) error {
		return s.inner.Pull(ctx, collection, id, field, value)
	})
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) error {
	return s.run(ctx, Operation{"increment", collection}, func(ctx context.Context) error {
		return s.inner.Increment(ctx, collection, id, field, delta)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.run(ctx, Operation{Name: "ping"}, s.inner.Ping)
}
