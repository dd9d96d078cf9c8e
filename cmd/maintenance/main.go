// Package main runs maintenance jobs from scheduled EventBridge rules. The
// rule's detail names the jobs, e.g. {"jobs": ["backfill-slugs"]}.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/infrastructure/config"
	"forum-api/infrastructure/di"
)

// JobRequest is the detail of the scheduled event
type JobRequest struct {
	Jobs []string `json:"jobs"`
}

// JobResult reports how many documents one job changed
type JobResult struct {
	Job     string `json:"job"`
	Changed int    `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// RunJobs runs every requested job in order. A failing job does not stop the
// ones after it; the first failure is returned once all have run.
func RunJobs(ctx context.Context, maintenance *services.MaintenanceService, logger *zap.Logger, request JobRequest) ([]JobResult, error) {
	if len(request.Jobs) == 0 {
		return nil, fmt.Errorf("no jobs requested")
	}

	var firstErr error
	results := make([]JobResult, 0, len(request.Jobs))
	for _, job := range request.Jobs {
		changed, err := maintenance.RunJob(ctx, job)
		result := JobResult{Job: job, Changed: changed}
		if err != nil {
			logger.Error("Maintenance job failed", zap.String("job", job), zap.Error(err))
			result.Error = err.Error()
			if firstErr == nil {
				firstErr = fmt.Errorf("job %s: %w", job, err)
			}
		} else {
			logger.Info("Maintenance job finished", zap.String("job", job), zap.Int("changed", changed))
		}
		results = append(results, result)
	}
	return results, firstErr
}

func newHandler(container *di.Container) func(context.Context, awsevents.CloudWatchEvent) ([]JobResult, error) {
	return func(ctx context.Context, event awsevents.CloudWatchEvent) ([]JobResult, error) {
		var request JobRequest
		if err := json.Unmarshal(event.Detail, &request); err != nil {
			return nil, fmt.Errorf("invalid job request: %w", err)
		}
		return RunJobs(ctx, container.Maintenance, container.Logger, request)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	lambda.Start(newHandler(container))
}
