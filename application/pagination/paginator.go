// Package pagination implements cursor pagination over a collection sorted
// newest first. A cursor is the id of the boundary document.
package pagination

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

// Page is one window of raw documents, ordered newest first
type Page struct {
	Docs       []abstractions.Document
	PageInfo   common.PageInfo
	TotalCount int
}

// Paginator narrows a base criteria to the requested page
type Paginator struct {
	store       ports.Store
	defaultSize int
	maxSize     int
	logger      *zap.Logger
}

// NewPaginator creates a paginator. Sizes above maxSize are clamped.
func NewPaginator(store ports.Store, defaultSize, maxSize int, logger *zap.Logger) *Paginator {
	if defaultSize <= 0 {
		defaultSize = 10
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &Paginator{store: store, defaultSize: defaultSize, maxSize: maxSize, logger: logger}
}

// Paginate fetches the page of collection described by params. base holds
// the filters of the full result set; it must not use AnyOf, which the
// cursor restriction occupies.
func (p *Paginator) Paginate(ctx context.Context, collection string, base abstractions.QueryCriteria, params common.CursorParams) (*Page, error) {
	forward := params.Forward()

	size, err := p.pageSize(params, forward)
	if err != nil {
		return nil, err
	}

	criteria := abstractions.QueryCriteria{
		Filters: base.Filters,
		Fields:  base.Fields,
		Sort:    abstractions.Newest(),
		Limit:   size + 1,
	}
	if !forward {
		criteria.Sort = abstractions.Oldest()
	}

	cursor := params.After
	if !forward {
		cursor = params.Before
	}
	if cursor != nil {
		restriction, err := p.cursorRestriction(ctx, collection, *cursor, forward)
		if err != nil {
			return nil, err
		}
		criteria.AnyOf = restriction
	}

	docs, err := p.store.Find(ctx, collection, criteria)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to page %s", collection)
	}

	total, err := p.store.Count(ctx, collection, abstractions.QueryCriteria{Filters: base.Filters})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to count %s", collection)
	}

	hasMore := len(docs) > size
	if hasMore {
		// the over-fetched sentinel is always the item furthest from the cursor
		docs = docs[:size]
	}
	if !forward {
		reverse(docs)
	}

	page := &Page{Docs: docs, TotalCount: int(total)}
	if forward {
		page.PageInfo.HasNextPage = hasMore
	} else {
		page.PageInfo.HasPreviousPage = hasMore
	}
	if len(docs) > 0 {
		start, end := docs[0].ID(), docs[len(docs)-1].ID()
		page.PageInfo.StartCursor = &start
		page.PageInfo.EndCursor = &end
	}

	p.logger.Debug("Page fetched",
		zap.String("collection", collection),
		zap.Bool("forward", forward),
		zap.Int("size", size),
		zap.Int("returned", len(docs)),
		zap.Bool("has_more", hasMore),
	)
	return page, nil
}

func (p *Paginator) pageSize(params common.CursorParams, forward bool) (int, error) {
	requested := params.First
	name := "first"
	if !forward {
		requested, name = params.Last, "last"
	}
	if requested == nil {
		return p.defaultSize, nil
	}
	if *requested < 0 {
		return 0, pkgerrors.NewValidationError(name + " must not be negative")
	}
	if *requested > p.maxSize {
		return p.maxSize, nil
	}
	return *requested, nil
}

// cursorRestriction loads the boundary document and returns the conditions
// selecting the documents strictly past it in scan order. Equal creation
// times are ordered by id so no document is skipped or repeated.
func (p *Paginator) cursorRestriction(ctx context.Context, collection, cursor string, forward bool) ([][]abstractions.Filter, error) {
	if _, err := valueobjects.ParseEntityID("cursor", cursor); err != nil {
		return nil, err
	}

	boundary, err := p.store.FindByID(ctx, collection, cursor)
	if err != nil {
		return nil, err
	}
	createdAt, ok := boundary.Time(abstractions.FieldCreatedAt)
	if !ok {
		return nil, pkgerrors.NewInvalidReferenceError("cursor", cursor)
	}

	op := abstractions.OpLessThan
	if !forward {
		op = abstractions.OpGreaterThan
	}
	return [][]abstractions.Filter{
		{{Field: abstractions.FieldCreatedAt, Operator: op, Value: createdAt}},
		{
			abstractions.Eq(abstractions.FieldCreatedAt, createdAt),
			{Field: abstractions.FieldID, Operator: op, Value: cursor},
		},
	}, nil
}

func reverse(docs []abstractions.Document) {
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}
