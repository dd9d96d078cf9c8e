package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

func newTestStore() *Store {
	return NewStore(zap.NewNop())
}

func topicDoc(id string, createdAt time.Time) abstractions.Document {
	return abstractions.Document{
		abstractions.FieldID:        id,
		abstractions.FieldTitle:     "title " + id,
		abstractions.FieldSlug:      "slug-" + id,
		abstractions.FieldCreatedAt: createdAt,
		abstractions.FieldComments:  []any{},
		abstractions.FieldViews:     0,
	}
}

func TestStore_Insert_RejectsDuplicateUniqueField(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	now := time.Now()

	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, topicDoc("a", now)))

	dup := topicDoc("b", now)
	dup[abstractions.FieldSlug] = "slug-a"
	err := store.Insert(ctx, abstractions.CollectionTopics, dup)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestStore_FindByID_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, topicDoc("a", time.Now())))

	doc, err := store.FindByID(ctx, abstractions.CollectionTopics, "a")
	require.NoError(t, err)
	doc[abstractions.FieldTitle] = "changed"

	again, err := store.FindByID(ctx, abstractions.CollectionTopics, "a")
	require.NoError(t, err)
	assert.Equal(t, "title a", again.String(abstractions.FieldTitle))
}

func TestStore_FindByID_NotFound(t *testing.T) {
	_, err := newTestStore().FindByID(context.Background(), abstractions.CollectionTopics, "missing")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_Find_SortLimitAndFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		doc := topicDoc(id, base.Add(time.Duration(i)*time.Minute))
		doc[abstractions.FieldCourse] = "course-1"
		if id == "d" {
			doc[abstractions.FieldCourse] = "course-2"
		}
		require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, doc))
	}

	docs, err := store.Find(ctx, abstractions.CollectionTopics, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldCourse, "course-1")},
		Sort:    abstractions.Newest(),
		Limit:   2,
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].ID())
	assert.Equal(t, "b", docs[1].ID())
}

func TestStore_Find_IDsInWithProjection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	now := time.Now()
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, topicDoc("a", now)))
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, topicDoc("b", now.Add(time.Second))))

	criteria := abstractions.IDsIn([]string{"b", "missing"})
	criteria.Fields = []string{abstractions.FieldTitle}
	docs, err := store.Find(ctx, abstractions.CollectionTopics, criteria)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, abstractions.Document{abstractions.FieldID: "b", abstractions.FieldTitle: "title b"}, docs[0])
}

func TestStore_Count_IgnoresLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, topicDoc(id, now)))
	}

	n, err := store.Count(ctx, abstractions.CollectionTopics, abstractions.QueryCriteria{Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStore_AddToSet_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Insert(ctx, abstractions.CollectionComments, abstractions.Document{
		abstractions.FieldID:    "c1",
		abstractions.FieldLikes: []any{},
	}))

	added, err := store.AddToSet(ctx, abstractions.CollectionComments, "c1", abstractions.FieldLikes, "u1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.AddToSet(ctx, abstractions.CollectionComments, "c1", abstractions.FieldLikes, "u1")
	require.NoError(t, err)
	assert.False(t, added)

	doc, err := store.FindByID(ctx, abstractions.CollectionComments, "c1")
	require.NoError(t, err)
	assert.Equal(t, []any{"u1"}, doc.List(abstractions.FieldLikes))
}

func TestStore_Pull_NonMemberIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Insert(ctx, abstractions.CollectionComments, abstractions.Document{
		abstractions.FieldID:    "c1",
		abstractions.FieldLikes: []any{"u1"},
	}))

	require.NoError(t, store.Pull(ctx, abstractions.CollectionComments, "c1", abstractions.FieldLikes, "u2"))

	doc, err := store.FindByID(ctx, abstractions.CollectionComments, "c1")
	require.NoError(t, err)
	assert.Equal(t, []any{"u1"}, doc.List(abstractions.FieldLikes))
}

func TestStore_Increment_AbsentFieldStartsAtZero(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, abstractions.Document{abstractions.FieldID: "t1"}))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Increment(ctx, abstractions.CollectionTopics, "t1", abstractions.FieldViews, 1))
	}

	doc, err := store.FindByID(ctx, abstractions.CollectionTopics, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, doc[abstractions.FieldViews])
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := newTestStore().FindByID(ctx, abstractions.CollectionTopics, "a")

	assert.True(t, pkgerrors.IsTimeout(err))
}
