package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/memory"
)

func TestRunJobs(t *testing.T) {
	maintenance := services.NewMaintenanceService(memory.NewStore(zap.NewNop()), valueobjects.DeriveSlug, nil, zap.NewNop()).
		WithLock(memory.NewJobLock())

	results, err := RunJobs(context.Background(), maintenance, zap.NewNop(), JobRequest{
		Jobs: []string{services.JobSeedCourses, "unknown", services.JobBackfillSlugs},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
	require.Len(t, results, 3)
	assert.Positive(t, results[0].Changed)
	assert.NotEmpty(t, results[1].Error)
	assert.Empty(t, results[2].Error)
}

func TestRunJobs_NothingRequested(t *testing.T) {
	_, err := RunJobs(context.Background(), nil, zap.NewNop(), JobRequest{})
	assert.Error(t, err)
}
