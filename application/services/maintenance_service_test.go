package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/abstractions"
	"forum-api/infrastructure/persistence/memory"
	pkgerrors "forum-api/pkg/errors"
)

func newMaintenance(store *memory.Store, now time.Time) *MaintenanceService {
	return NewMaintenanceService(store, valueobjects.DeriveSlug, func() time.Time { return now }, zap.NewNop())
}

func TestMaintenanceService_SeedCourses_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	svc := newMaintenance(store, time.Now())

	created, err := svc.SeedCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Catalogue), created)

	created, err = svc.SeedCourses(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	n, err := store.Count(ctx, abstractions.CollectionCourses, abstractions.QueryCriteria{})
	require.NoError(t, err)
	assert.EqualValues(t, len(Catalogue), n)

	docs, err := store.Find(ctx, abstractions.CollectionCourses, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldSlug, "backend-development")},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Backend Development", docs[0].String(abstractions.FieldTitle))
}

func TestMaintenanceService_BackfillSlugs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, abstractions.Document{
		"id": "t1", "title": "Event Loop Basics", "createdAt": time.Now(),
	}))
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, abstractions.Document{
		"id": "t2", "title": "Async Await", "slug": "async-await", "createdAt": time.Now(),
	}))
	require.NoError(t, store.Insert(ctx, abstractions.CollectionTopics, abstractions.Document{
		"id": "t3", "title": "Async   Await!", "slug": "stale", "createdAt": time.Now(),
	}))

	updated, err := newMaintenance(store, time.Now()).BackfillSlugs(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, updated, "t1 gets a slug, t3 collides with t2 and is skipped")
	t1, err := store.FindByID(ctx, abstractions.CollectionTopics, "t1")
	require.NoError(t, err)
	assert.Equal(t, "event-loop-basics", t1.String(abstractions.FieldSlug))
	t3, err := store.FindByID(ctx, abstractions.CollectionTopics, "t3")
	require.NoError(t, err)
	assert.Equal(t, "stale", t3.String(abstractions.FieldSlug))
}

func TestMaintenanceService_BackfillReplyTimestamps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, abstractions.CollectionReplies, abstractions.Document{"id": "r1", "createdAt": created}))
	require.NoError(t, store.Insert(ctx, abstractions.CollectionReplies, abstractions.Document{"id": "r2"}))
	require.NoError(t, store.Insert(ctx, abstractions.CollectionReplies, abstractions.Document{"id": "r3", "createdAt": created, "updatedAt": created}))

	updated, err := newMaintenance(store, now).BackfillReplyTimestamps(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	r1, _ := store.FindByID(ctx, abstractions.CollectionReplies, "r1")
	ts, ok := r1.Time(abstractions.FieldUpdatedAt)
	require.True(t, ok)
	assert.True(t, ts.Equal(created))
	r2, _ := store.FindByID(ctx, abstractions.CollectionReplies, "r2")
	ts, ok = r2.Time(abstractions.FieldUpdatedAt)
	require.True(t, ok)
	assert.True(t, ts.Equal(now))
}

func TestMaintenanceService_RunJob(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(zap.NewNop())
	lock := memory.NewJobLock()
	svc := newMaintenance(store, time.Now()).WithLock(lock)

	t.Run("runs under the lock", func(t *testing.T) {
		created, err := svc.RunJob(ctx, JobSeedCourses)
		require.NoError(t, err)
		assert.Equal(t, len(Catalogue), created)

		// released afterwards
		release, err := lock.Acquire(ctx, JobSeedCourses, time.Minute)
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})

	t.Run("busy", func(t *testing.T) {
		release, err := lock.Acquire(ctx, JobBackfillSlugs, time.Minute)
		require.NoError(t, err)
		defer release(ctx)

		_, err = svc.RunJob(ctx, JobBackfillSlugs)
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := svc.RunJob(ctx, "drop-everything")
		assert.True(t, pkgerrors.IsValidation(err))
	})
}
