package handlers

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/pagination"
	"forum-api/application/population"
	"forum-api/application/ports"
	"forum-api/application/views"
	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

// Reader bundles the read-side engine shared by every query handler: the
// store, the reference resolver, the view materializer and the paginator.
type Reader struct {
	store     ports.Store
	resolver  *population.Resolver
	views     *views.Materializer
	paginator *pagination.Paginator
	logger    *zap.Logger
}

// NewReader creates a reader
func NewReader(
	store ports.Store,
	resolver *population.Resolver,
	materializer *views.Materializer,
	paginator *pagination.Paginator,
	logger *zap.Logger,
) *Reader {
	return &Reader{
		store:     store,
		resolver:  resolver,
		views:     materializer,
		paginator: paginator,
		logger:    logger,
	}
}

// byID loads a document and populates it with plan
func (r *Reader) byID(ctx context.Context, collection, id string, plan population.Plan) (abstractions.Document, error) {
	doc, err := ports.Lookup(ctx, r.store, collection, id)
	if err != nil {
		return nil, err
	}
	if err := r.resolver.PopulateOne(ctx, doc, plan); err != nil {
		return nil, err
	}
	return doc, nil
}

// bySlug loads the document whose slug matches and populates it with plan
func (r *Reader) bySlug(ctx context.Context, collection, slug string, plan population.Plan) (abstractions.Document, error) {
	docs, err := r.store.Find(ctx, collection, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldSlug, slug)},
		Limit:   1,
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to find %s by slug", collection)
	}
	if len(docs) == 0 {
		return nil, pkgerrors.NewNotFoundError(abstractions.EntityName(collection))
	}
	if err := r.resolver.PopulateOne(ctx, docs[0], plan); err != nil {
		return nil, err
	}
	return docs[0], nil
}

// list loads every document matching criteria and populates them with plan
func (r *Reader) list(ctx context.Context, collection string, criteria abstractions.QueryCriteria, plan population.Plan) ([]abstractions.Document, error) {
	docs, err := r.store.Find(ctx, collection, criteria)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list %s", collection)
	}
	if err := r.resolver.Populate(ctx, docs, plan); err != nil {
		return nil, err
	}
	return docs, nil
}

// page fetches a populated page of collection
func (r *Reader) page(ctx context.Context, collection string, base abstractions.QueryCriteria, params common.CursorParams, plan population.Plan) (*pagination.Page, error) {
	page, err := r.paginator.Paginate(ctx, collection, base, params)
	if err != nil {
		return nil, err
	}
	if err := r.resolver.Populate(ctx, page.Docs, plan); err != nil {
		return nil, err
	}
	return page, nil
}

// connection wraps rendered nodes in the edges/pageInfo envelope. The cursor
// of each edge is the id of its node.
func connection[T any](page *pagination.Page, render func(abstractions.Document) T) *common.Connection[T] {
	conn := &common.Connection[T]{
		Edges:      make([]common.Edge[T], 0, len(page.Docs)),
		PageInfo:   page.PageInfo,
		TotalCount: page.TotalCount,
	}
	for _, doc := range page.Docs {
		conn.Edges = append(conn.Edges, common.Edge[T]{Node: render(doc), Cursor: doc.ID()})
	}
	return conn
}
