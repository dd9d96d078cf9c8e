// Command seed runs the maintenance jobs against the configured store.
//
//	seed -courses            insert the course catalogue
//	seed -slugs -replies     backfill slugs and reply timestamps
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"forum-api/application/services"
	"forum-api/infrastructure/config"
	"forum-api/infrastructure/di"
)

func main() {
	courses := flag.Bool("courses", false, "insert missing catalogue courses")
	slugs := flag.Bool("slugs", false, "derive slugs for courses and topics without one")
	replies := flag.Bool("replies", false, "fill in missing reply timestamps")
	flag.Parse()

	jobs := selectedJobs(*courses, *slugs, *replies)
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -courses, -slugs and/or -replies")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	defer container.Logger.Sync()

	failed := false
	for _, job := range jobs {
		changed, err := container.Maintenance.RunJob(ctx, job)
		if err != nil {
			container.Logger.Error("Job failed", zap.String("job", job), zap.Error(err))
			failed = true
			continue
		}
		container.Logger.Info("Job finished", zap.String("job", job), zap.Int("changed", changed))
	}
	if failed {
		cleanup()
		os.Exit(1)
	}
}

func selectedJobs(courses, slugs, replies bool) []string {
	var jobs []string
	if courses {
		jobs = append(jobs, services.JobSeedCourses)
	}
	if slugs {
		jobs = append(jobs, services.JobBackfillSlugs)
	}
	if replies {
		jobs = append(jobs, services.JobBackfillReplyTimestamps)
	}
	return jobs
}
