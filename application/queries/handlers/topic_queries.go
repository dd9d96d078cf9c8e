package handlers

import (
	"context"

	"forum-api/application/population"
	"forum-api/application/ports"
	"forum-api/application/queries"
	"forum-api/application/views"
	"forum-api/infrastructure/persistence/abstractions"
)

// GetTopicsByCourseHandler pages through the topics of one course
type GetTopicsByCourseHandler struct {
	*Reader
}

// NewGetTopicsByCourseHandler creates a new handler instance
func NewGetTopicsByCourseHandler(reader *Reader) *GetTopicsByCourseHandler {
	return &GetTopicsByCourseHandler{Reader: reader}
}

// Handle executes the get topics by course query
func (h *GetTopicsByCourseHandler) Handle(ctx context.Context, q queries.GetTopicsByCourseQuery) (*queries.TopicConnection, error) {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionCourses, q.CourseID); err != nil {
		return nil, err
	}

	base := abstractions.QueryCriteria{
		Filters: []abstractions.Filter{abstractions.Eq(abstractions.FieldCourse, q.CourseID)},
	}
	page, err := h.page(ctx, abstractions.CollectionTopics, base, q.Page, population.TopicPlan())
	if err != nil {
		return nil, err
	}
	return connection(page, h.views.Topic), nil
}

// GetTopicByIDHandler loads a fully populated topic
type GetTopicByIDHandler struct {
	*Reader
}

// NewGetTopicByIDHandler creates a new handler instance
func NewGetTopicByIDHandler(reader *Reader) *GetTopicByIDHandler {
	return &GetTopicByIDHandler{Reader: reader}
}

// Handle executes the get topic by id query
func (h *GetTopicByIDHandler) Handle(ctx context.Context, q queries.GetTopicByIDQuery) (*views.TopicView, error) {
	doc, err := h.byID(ctx, abstractions.CollectionTopics, q.TopicID, population.TopicPlan())
	if err != nil {
		return nil, err
	}
	topic := h.views.Topic(doc)
	return &topic, nil
}

// GetTopicBySlugHandler loads a fully populated topic by slug
type GetTopicBySlugHandler struct {
	*Reader
}

// NewGetTopicBySlugHandler creates a new handler instance
func NewGetTopicBySlugHandler(reader *Reader) *GetTopicBySlugHandler {
	return &GetTopicBySlugHandler{Reader: reader}
}

// Handle executes the get topic by slug query
func (h *GetTopicBySlugHandler) Handle(ctx context.Context, q queries.GetTopicBySlugQuery) (*views.TopicView, error) {
	doc, err := h.bySlug(ctx, abstractions.CollectionTopics, q.Slug, population.TopicPlan())
	if err != nil {
		return nil, err
	}
	topic := h.views.Topic(doc)
	return &topic, nil
}

// ListTopicsHandler lists every topic, newest first
type ListTopicsHandler struct {
	*Reader
}

// NewListTopicsHandler creates a new handler instance
func NewListTopicsHandler(reader *Reader) *ListTopicsHandler {
	return &ListTopicsHandler{Reader: reader}
}

// Handle executes the list topics query
func (h *ListTopicsHandler) Handle(ctx context.Context, _ queries.ListTopicsQuery) ([]views.TopicView, error) {
	docs, err := h.list(ctx, abstractions.CollectionTopics,
		abstractions.QueryCriteria{Sort: abstractions.Newest()}, population.TopicPlan())
	if err != nil {
		return nil, err
	}
	return h.views.Topics(docs), nil
}
