package handlers

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/population"
	"forum-api/application/queries"
	"forum-api/application/views"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// GetAllCoursesHandler pages through courses
type GetAllCoursesHandler struct {
	*Reader
}

// NewGetAllCoursesHandler creates a new handler instance
func NewGetAllCoursesHandler(reader *Reader) *GetAllCoursesHandler {
	return &GetAllCoursesHandler{Reader: reader}
}

// Handle executes the get all courses query
func (h *GetAllCoursesHandler) Handle(ctx context.Context, q queries.GetAllCoursesQuery) (*queries.CourseConnection, error) {
	page, err := h.page(ctx, abstractions.CollectionCourses, abstractions.QueryCriteria{}, q.Page, nil)
	if err != nil {
		return nil, err
	}
	return connection(page, h.views.Course), nil
}

// GetCourseByIDHandler loads a course by id
type GetCourseByIDHandler struct {
	*Reader
}

// NewGetCourseByIDHandler creates a new handler instance
func NewGetCourseByIDHandler(reader *Reader) *GetCourseByIDHandler {
	return &GetCourseByIDHandler{Reader: reader}
}

// Handle executes the get course by id query
func (h *GetCourseByIDHandler) Handle(ctx context.Context, q queries.GetCourseByIDQuery) (*views.CourseView, error) {
	doc, err := h.byID(ctx, abstractions.CollectionCourses, q.CourseID, nil)
	if err != nil {
		return nil, err
	}
	course := h.views.Course(doc)
	return &course, nil
}

// GetCourseBySlugHandler loads a course with its live topic count and newest topic
type GetCourseBySlugHandler struct {
	*Reader
}

// NewGetCourseBySlugHandler creates a new handler instance
func NewGetCourseBySlugHandler(reader *Reader) *GetCourseBySlugHandler {
	return &GetCourseBySlugHandler{Reader: reader}
}

// Handle executes the get course by slug query
func (h *GetCourseBySlugHandler) Handle(ctx context.Context, q queries.GetCourseBySlugQuery) (*views.CourseDetailView, error) {
	doc, err := h.bySlug(ctx, abstractions.CollectionCourses, q.Slug, nil)
	if err != nil {
		return nil, err
	}

	ofCourse := []abstractions.Filter{abstractions.Eq(abstractions.FieldCourse, doc.ID())}
	count, err := h.store.Count(ctx, abstractions.CollectionTopics, abstractions.QueryCriteria{Filters: ofCourse})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to count course topics")
	}

	latest, err := h.list(ctx, abstractions.CollectionTopics, abstractions.QueryCriteria{
		Filters: ofCourse,
		Sort:    abstractions.Newest(),
		Limit:   1,
	}, population.TopicPlan())
	if err != nil {
		return nil, err
	}

	detail := &views.CourseDetailView{
		CourseView: h.views.Course(doc),
		TopicCount: int(count),
	}
	if len(latest) > 0 {
		topic := h.views.Topic(latest[0])
		detail.LatestTopic = &topic
	}

	h.logger.Debug("Course detail loaded",
		zap.String("slug", q.Slug),
		zap.Int64("topic_count", count),
	)
	return detail, nil
}
