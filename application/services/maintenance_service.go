package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/domain/core/entities"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// CatalogueCourse is one of the courses every deployment starts with
type CatalogueCourse struct {
	Title       string
	Description string
}

// Catalogue lists the seeded courses
var Catalogue = []CatalogueCourse{
	{Title: "JavaScript", Description: "Ask questions and share tips for JavaScript, jQuery, React, Node, D3 - anything that touches the vast JavaScript and npm ecosystem."},
	{Title: "Python", Description: "Ask questions and share tips related to Python and any tools in the Python ecosystem."},
	{Title: "HTML-CSS", Description: "Ask about anything related to HTML and CSS, including web design tools like Sass and Bootstrap"},
	{Title: "Backend Development", Description: "Discuss Linux, SQL, Git, Node.js / Django, Docker, NGINX, and any sort of database / server tools."},
	{Title: "C#", Description: "Ask questions and share tips related to C# and any tools in the .NET ecosystem."},
}

// MaintenanceService runs one-off data jobs against the store
type MaintenanceService struct {
	store   ports.Store
	slugify valueobjects.SlugFunc
	now     ports.Clock
	lock    ports.JobLock
	logger  *zap.Logger
}

// Job names accepted by RunJob
const (
	JobSeedCourses             = "seed-courses"
	JobBackfillSlugs           = "backfill-slugs"
	JobBackfillReplyTimestamps = "backfill-reply-timestamps"
)

// jobLease bounds how long the lock of a crashed job stays held
const jobLease = 10 * time.Minute

// NewMaintenanceService creates a maintenance service
func NewMaintenanceService(store ports.Store, slugify valueobjects.SlugFunc, now ports.Clock, logger *zap.Logger) *MaintenanceService {
	if now == nil {
		now = time.Now
	}
	return &MaintenanceService{store: store, slugify: slugify, now: now, logger: logger}
}

// WithLock makes RunJob hold lock while a job runs
func (s *MaintenanceService) WithLock(lock ports.JobLock) *MaintenanceService {
	s.lock = lock
	return s
}

// RunJob runs the named job and returns how many documents it changed
func (s *MaintenanceService) RunJob(ctx context.Context, name string) (int, error) {
	jobs := map[string]func(context.Context) (int, error){
		JobSeedCourses:             s.SeedCourses,
		JobBackfillSlugs:           s.BackfillSlugs,
		JobBackfillReplyTimestamps: s.BackfillReplyTimestamps,
	}
	job, ok := jobs[name]
	if !ok {
		return 0, pkgerrors.NewValidationError(fmt.Sprintf("unknown job %q", name))
	}
	if s.lock == nil {
		return job(ctx)
	}

	release, err := s.lock.Acquire(ctx, name, jobLease)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release job lock", zap.String("job", name), zap.Error(err))
		}
	}()
	return job(ctx)
}

// SeedCourses inserts the catalogue courses that do not exist yet, matched by
// title. It returns how many were created.
func (s *MaintenanceService) SeedCourses(ctx context.Context) (int, error) {
	created := 0
	for _, c := range Catalogue {
		n, err := s.store.Count(ctx, abstractions.CollectionCourses, abstractions.QueryCriteria{
			Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldTitle, c.Title)},
		})
		if err != nil {
			return created, pkgerrors.Wrapf(err, "failed to check course %q", c.Title)
		}
		if n > 0 {
			continue
		}

		title, err := valueobjects.NewTitle(c.Title)
		if err != nil {
			return created, err
		}
		course, err := entities.NewCourse(valueobjects.NewEntityID(), title, c.Description, s.slugify, s.now())
		if err != nil {
			return created, err
		}
		if err := s.store.Insert(ctx, abstractions.CollectionCourses, abstractions.FromCourse(course)); err != nil {
			return created, pkgerrors.Wrapf(err, "failed to seed course %q", c.Title)
		}
		created++
		s.logger.Info("Course seeded", zap.String("title", c.Title), zap.String("slug", course.Slug))
	}
	return created, nil
}

// BackfillSlugs recomputes the slug of every course and topic whose slug is
// missing or no longer matches its title. A slug that would collide with
// another document is skipped and logged.
func (s *MaintenanceService) BackfillSlugs(ctx context.Context) (int, error) {
	updated := 0
	for _, collection := range []string{abstractions.CollectionCourses, abstractions.CollectionTopics} {
		docs, err := s.store.Find(ctx, collection, abstractions.QueryCriteria{
			Fields: []string{abstractions.FieldTitle, abstractions.FieldSlug},
		})
		if err != nil {
			return updated, pkgerrors.Wrapf(err, "failed to scan %s", collection)
		}

		for _, doc := range docs {
			want := s.slugify(doc.String(abstractions.FieldTitle))
			if want == "" || want == doc.String(abstractions.FieldSlug) {
				continue
			}
			err := s.store.UpdateByID(ctx, collection, doc.ID(), abstractions.Document{
				abstractions.FieldSlug:      want,
				abstractions.FieldUpdatedAt: s.now().UTC(),
			})
			if pkgerrors.IsConflict(err) {
				s.logger.Warn("Skipping slug that is already taken",
					zap.String("collection", collection),
					zap.String("id", doc.ID()),
					zap.String("slug", want),
				)
				continue
			}
			if err != nil {
				return updated, err
			}
			updated++
		}
	}
	s.logger.Info("Slug backfill finished", zap.Int("updated", updated))
	return updated, nil
}

// BackfillReplyTimestamps sets updatedAt on replies that lack it, using the
// reply's createdAt when present.
func (s *MaintenanceService) BackfillReplyTimestamps(ctx context.Context) (int, error) {
	docs, err := s.store.Find(ctx, abstractions.CollectionReplies, abstractions.QueryCriteria{
		Fields: []string{abstractions.FieldCreatedAt, abstractions.FieldUpdatedAt},
	})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to scan replies")
	}

	updated := 0
	for _, doc := range docs {
		if _, ok := doc.Time(abstractions.FieldUpdatedAt); ok {
			continue
		}
		ts, ok := doc.Time(abstractions.FieldCreatedAt)
		if !ok {
			ts = s.now()
		}
		if err := s.store.UpdateByID(ctx, abstractions.CollectionReplies, doc.ID(),
			abstractions.Document{abstractions.FieldUpdatedAt: ts.UTC()}); err != nil {
			return updated, err
		}
		updated++
	}
	s.logger.Info("Reply timestamp backfill finished", zap.Int("updated", updated))
	return updated, nil
}
