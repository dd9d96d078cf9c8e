package population

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/infrastructure/persistence/memory"
)

// countingStore records every Find issued per collection
type countingStore struct {
	*memory.Store
	finds   map[string]int
	failFor string
}

func (s *countingStore) Find(ctx context.Context, collection string, c abstractions.QueryCriteria) ([]abstractions.Document, error) {
	s.finds[collection]++
	if collection == s.failFor {
		return nil, errors.New("connection reset")
	}
	return s.Store.Find(ctx, collection, c)
}

func seedTree(t *testing.T) (*countingStore, abstractions.Document) {
	t.Helper()
	ctx := context.Background()
	store := &countingStore{Store: memory.NewStore(zap.NewNop()), finds: map[string]int{}}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	insert := func(collection string, doc abstractions.Document) {
		doc[abstractions.FieldCreatedAt] = now
		require.NoError(t, store.Insert(ctx, collection, doc))
	}

	insert(abstractions.CollectionUsers, abstractions.Document{
		"id": "alice", "username": "alice", "email": "alice@example.com", "password": "secret-hash",
	})
	insert(abstractions.CollectionUsers, abstractions.Document{
		"id": "bob", "username": "bob", "email": "bob@example.com",
	})
	insert(abstractions.CollectionReplies, abstractions.Document{
		"id": "r1", "text": "reply", "comment": "c1", "createdBy": "bob", "likes": []any{"alice", "ghost"},
	})
	insert(abstractions.CollectionComments, abstractions.Document{
		"id": "c1", "text": "first", "topic": "t1", "createdBy": "alice",
		"likes": []any{"bob"}, "replies": []any{"r1", "missing-reply"},
	})
	insert(abstractions.CollectionComments, abstractions.Document{
		"id": "c2", "text": "second", "topic": "t1", "createdBy": "deleted-user-id",
		"likes": []any{}, "replies": []any{},
	})
	insert(abstractions.CollectionTopics, abstractions.Document{
		"id": "t1", "title": "Closures", "slug": "closures", "createdBy": "alice",
		"comments": []any{"c1", "c2"},
	})

	topic, err := store.Store.FindByID(ctx, abstractions.CollectionTopics, "t1")
	require.NoError(t, err)
	return store, topic
}

func TestResolver_Populate_TopicTree(t *testing.T) {
	// Arrange
	store, topic := seedTree(t)
	resolver := NewResolver(store, zap.NewNop())

	// Act
	err := resolver.PopulateOne(context.Background(), topic, TopicPlan())

	// Assert
	require.NoError(t, err)

	author, ok := abstractions.AsDocument(topic["createdBy"])
	require.True(t, ok)
	assert.Equal(t, "alice", author.String("username"))
	assert.NotContains(t, author, "password")

	comments := topic.List("comments")
	require.Len(t, comments, 2)

	c1, ok := abstractions.AsDocument(comments[0])
	require.True(t, ok)
	liker, ok := abstractions.AsDocument(c1.List("likes")[0])
	require.True(t, ok)
	assert.Equal(t, "bob", liker.ID())

	replies := c1.List("replies")
	require.Len(t, replies, 2)
	assert.Nil(t, replies[1], "missing reply resolves to nil")

	r1, ok := abstractions.AsDocument(replies[0])
	require.True(t, ok)
	replyLikes := r1.List("likes")
	require.Len(t, replyLikes, 2)
	assert.NotNil(t, replyLikes[0])
	assert.Nil(t, replyLikes[1], "dangling liker resolves to nil")

	c2, ok := abstractions.AsDocument(comments[1])
	require.True(t, ok)
	assert.Nil(t, c2["createdBy"], "deleted author resolves to nil")
}

func TestResolver_Populate_OneFindPerCollectionPerLevel(t *testing.T) {
	store, topic := seedTree(t)
	resolver := NewResolver(store, zap.NewNop())

	require.NoError(t, resolver.PopulateOne(context.Background(), topic, TopicPlan()))

	// users are needed at all three levels; comments and replies once each
	assert.Equal(t, 3, store.finds[abstractions.CollectionUsers])
	assert.Equal(t, 1, store.finds[abstractions.CollectionComments])
	assert.Equal(t, 1, store.finds[abstractions.CollectionReplies])
}

func TestResolver_Populate_BatchesAcrossDocuments(t *testing.T) {
	store, _ := seedTree(t)
	ctx := context.Background()
	comments, err := store.Store.Find(ctx, abstractions.CollectionComments, abstractions.QueryCriteria{})
	require.NoError(t, err)
	resolver := NewResolver(store, zap.NewNop())

	require.NoError(t, resolver.Populate(ctx, comments, CommentPlan()))

	assert.Equal(t, 2, store.finds[abstractions.CollectionUsers])
	assert.Equal(t, 1, store.finds[abstractions.CollectionReplies])
}

func TestResolver_Populate_StoreFailurePropagates(t *testing.T) {
	store, topic := seedTree(t)
	store.failFor = abstractions.CollectionComments
	resolver := NewResolver(store, zap.NewNop())

	err := resolver.PopulateOne(context.Background(), topic, TopicPlan())

	assert.Error(t, err)
}

func TestResolver_Populate_EmptyPlanIsNoop(t *testing.T) {
	store, topic := seedTree(t)
	resolver := NewResolver(store, zap.NewNop())

	require.NoError(t, resolver.PopulateOne(context.Background(), topic, nil))

	assert.Equal(t, "alice", topic["createdBy"])
	assert.Empty(t, store.finds)
}
