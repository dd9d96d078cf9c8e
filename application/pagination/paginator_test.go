package pagination

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/infrastructure/persistence/memory"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func ids(docs []abstractions.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}

// seedTopics inserts n topics in course-1 created one minute apart and returns
// their ids oldest first. When sameInstant is set every topic shares one
// creation time.
func seedTopics(t *testing.T, store *memory.Store, n int, sameInstant bool) []string {
	t.Helper()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		created := base.Add(time.Duration(i) * time.Minute)
		if sameInstant {
			created = base
		}
		require.NoError(t, store.Insert(context.Background(), abstractions.CollectionTopics, abstractions.Document{
			abstractions.FieldID:        id,
			abstractions.FieldCourse:    "course-1",
			abstractions.FieldSlug:      id,
			abstractions.FieldCreatedAt: created,
		}))
		out = append(out, id)
	}
	return out
}

func reversed(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

var courseFilter = abstractions.QueryCriteria{
	Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldCourse, "course-1")},
}

func TestPaginator_Forward_ExampleFromThreeTopics(t *testing.T) {
	// Arrange
	store := memory.NewStore(zap.NewNop())
	created := seedTopics(t, store, 3, false)
	t1, t2, t3 := created[0], created[1], created[2]
	p := NewPaginator(store, 10, 100, zap.NewNop())
	ctx := context.Background()

	// Act
	first, err := p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{First: intPtr(2)})
	require.NoError(t, err)
	second, err := p.Paginate(ctx, abstractions.CollectionTopics, courseFilter,
		common.CursorParams{First: intPtr(2), After: first.PageInfo.EndCursor})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{t3, t2}, ids(first.Docs))
	assert.True(t, first.PageInfo.HasNextPage)
	assert.False(t, first.PageInfo.HasPreviousPage)
	assert.Equal(t, t2, *first.PageInfo.EndCursor)
	assert.Equal(t, 3, first.TotalCount)

	assert.Equal(t, []string{t1}, ids(second.Docs))
	assert.False(t, second.PageInfo.HasNextPage)
	assert.Equal(t, 3, second.TotalCount)
}

func TestPaginator_Forward_EnumeratesEveryItemOnce(t *testing.T) {
	for _, sameInstant := range []bool{false, true} {
		store := memory.NewStore(zap.NewNop())
		created := seedTopics(t, store, 11, sameInstant)
		p := NewPaginator(store, 10, 100, zap.NewNop())

		var seen []string
		params := common.CursorParams{First: intPtr(3)}
		for pages := 0; pages < 10; pages++ {
			page, err := p.Paginate(context.Background(), abstractions.CollectionTopics, courseFilter, params)
			require.NoError(t, err)
			seen = append(seen, ids(page.Docs)...)
			if !page.PageInfo.HasNextPage {
				break
			}
			params.After = page.PageInfo.EndCursor
		}

		assert.Len(t, seen, len(created))
		assert.ElementsMatch(t, created, seen)
		if !sameInstant {
			assert.Equal(t, reversed(created), seen, "strictly newest first")
		}
	}
}

func TestPaginator_Backward_ReturnsItemsBeforeBoundaryNewestFirst(t *testing.T) {
	store := memory.NewStore(zap.NewNop())
	created := seedTopics(t, store, 6, false) // c0 (oldest) .. c5 (newest)
	p := NewPaginator(store, 10, 100, zap.NewNop())

	page, err := p.Paginate(context.Background(), abstractions.CollectionTopics, courseFilter,
		common.CursorParams{Last: intPtr(2), Before: strPtr(created[2])})

	require.NoError(t, err)
	// the two items adjacent to c2 on the newer side, still newest first
	assert.Equal(t, []string{created[4], created[3]}, ids(page.Docs))
	assert.True(t, page.PageInfo.HasPreviousPage)
	assert.False(t, page.PageInfo.HasNextPage)
	assert.Equal(t, created[4], *page.PageInfo.StartCursor)
	assert.Equal(t, created[3], *page.PageInfo.EndCursor)
}

func TestPaginator_Backward_NoMorePages(t *testing.T) {
	store := memory.NewStore(zap.NewNop())
	created := seedTopics(t, store, 3, false)
	p := NewPaginator(store, 10, 100, zap.NewNop())

	page, err := p.Paginate(context.Background(), abstractions.CollectionTopics, courseFilter,
		common.CursorParams{Last: intPtr(5), Before: strPtr(created[0])})

	require.NoError(t, err)
	assert.Equal(t, []string{created[2], created[1]}, ids(page.Docs))
	assert.False(t, page.PageInfo.HasPreviousPage)
}

func TestPaginator_ForwardWinsWhenBothGiven(t *testing.T) {
	store := memory.NewStore(zap.NewNop())
	created := seedTopics(t, store, 4, false)
	p := NewPaginator(store, 10, 100, zap.NewNop())

	page, err := p.Paginate(context.Background(), abstractions.CollectionTopics, courseFilter,
		common.CursorParams{First: intPtr(1), Last: intPtr(3)})

	require.NoError(t, err)
	assert.Equal(t, []string{created[3]}, ids(page.Docs))
	assert.True(t, page.PageInfo.HasNextPage)
}

func TestPaginator_EmptyCollection(t *testing.T) {
	p := NewPaginator(memory.NewStore(zap.NewNop()), 10, 100, zap.NewNop())

	page, err := p.Paginate(context.Background(), abstractions.CollectionTopics, courseFilter, common.CursorParams{})

	require.NoError(t, err)
	assert.Empty(t, page.Docs)
	assert.Nil(t, page.PageInfo.StartCursor)
	assert.Nil(t, page.PageInfo.EndCursor)
	assert.False(t, page.PageInfo.HasNextPage)
	assert.Equal(t, 0, page.TotalCount)
}

func TestPaginator_SizeRules(t *testing.T) {
	store := memory.NewStore(zap.NewNop())
	seedTopics(t, store, 5, false)
	p := NewPaginator(store, 2, 3, zap.NewNop())
	ctx := context.Background()

	page, err := p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{})
	require.NoError(t, err)
	assert.Len(t, page.Docs, 2, "default size")

	page, err = p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{First: intPtr(50)})
	require.NoError(t, err)
	assert.Len(t, page.Docs, 3, "clamped to max")

	_, err = p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{First: intPtr(-1)})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestPaginator_BadCursors(t *testing.T) {
	p := NewPaginator(memory.NewStore(zap.NewNop()), 10, 100, zap.NewNop())
	ctx := context.Background()

	_, err := p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{After: strPtr("not-an-id")})
	assert.True(t, pkgerrors.IsInvalidReference(err))

	_, err = p.Paginate(ctx, abstractions.CollectionTopics, courseFilter, common.CursorParams{After: strPtr(uuid.NewString())})
	assert.True(t, pkgerrors.IsNotFound(err))
}
