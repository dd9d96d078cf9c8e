package handlers

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/commands"
	"forum-api/application/ports"
	"forum-api/domain/config"
	"forum-api/domain/core/entities"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// CreateTopicHandler handles topic creation
type CreateTopicHandler struct {
	store    ports.Store
	eventBus ports.EventBus
	slugify  valueobjects.SlugFunc
	domain   *config.DomainConfig
	now      ports.Clock
	logger   *zap.Logger
}

// NewCreateTopicHandler creates a new handler instance
func NewCreateTopicHandler(
	store ports.Store,
	eventBus ports.EventBus,
	slugify valueobjects.SlugFunc,
	domain *config.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) *CreateTopicHandler {
	return &CreateTopicHandler{
		store:    store,
		eventBus: eventBus,
		slugify:  slugify,
		domain:   domain,
		now:      now,
		logger:   logger,
	}
}

// Handle executes the create topic command
func (h *CreateTopicHandler) Handle(ctx context.Context, cmd commands.CreateTopicCommand) error {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionCourses, cmd.CourseID); err != nil {
		return err
	}

	id, err := valueobjects.ParseEntityID("topic", cmd.TopicID)
	if err != nil {
		return err
	}
	title, err := valueobjects.NewTitleWithConfig(cmd.Title, h.domain)
	if err != nil {
		return err
	}
	description, err := valueobjects.NewText("description", cmd.Description, h.domain.MaxDescriptionLength)
	if err != nil {
		return err
	}

	topic, err := entities.NewTopic(id, cmd.CourseID, cmd.UserID, title, description, h.slugify, h.now())
	if err != nil {
		return err
	}

	if err := h.store.Insert(ctx, abstractions.CollectionTopics, abstractions.FromTopic(topic)); err != nil {
		return duplicateTitle(err, "topic")
	}

	appendChild(ctx, h.store, h.logger, abstractions.CollectionCourses, cmd.CourseID, abstractions.FieldTopics, topic.ID.String())
	publishEvents(ctx, h.eventBus, h.logger, topic)

	h.logger.Info("Topic created",
		zap.String("topic_id", topic.ID.String()),
		zap.String("course_id", cmd.CourseID),
		zap.String("slug", topic.Slug),
	)
	return nil
}

// UpdateTopicHandler lets an author change the title or description of a topic
type UpdateTopicHandler struct {
	store    ports.Store
	eventBus ports.EventBus
	slugify  valueobjects.SlugFunc
	domain   *config.DomainConfig
	now      ports.Clock
	logger   *zap.Logger
}

// NewUpdateTopicHandler creates a new update topic handler
func NewUpdateTopicHandler(
	store ports.Store,
	eventBus ports.EventBus,
	slugify valueobjects.SlugFunc,
	domain *config.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) *UpdateTopicHandler {
	return &UpdateTopicHandler{
		store:    store,
		eventBus: eventBus,
		slugify:  slugify,
		domain:   domain,
		now:      now,
		logger:   logger,
	}
}

// Handle executes the update topic command
func (h *UpdateTopicHandler) Handle(ctx context.Context, cmd commands.UpdateTopicCommand) error {
	topic, err := ports.Lookup(ctx, h.store, abstractions.CollectionTopics, cmd.TopicID)
	if err != nil {
		return err
	}

	var title *valueobjects.Title
	if cmd.Title != nil {
		t, err := valueobjects.NewTitleWithConfig(*cmd.Title, h.domain)
		if err != nil {
			return err
		}
		title = &t
	}
	var description *valueobjects.Text
	if cmd.Description != nil {
		d, err := valueobjects.NewText("description", *cmd.Description, h.domain.MaxDescriptionLength)
		if err != nil {
			return err
		}
		description = &d
	}

	currentSlug := topic.String(abstractions.FieldSlug)
	now := h.now()
	edit, err := entities.NewTopicEdit(cmd.TopicID, topic.String(abstractions.FieldCreatedBy), cmd.UserID,
		currentSlug, title, description, h.slugify, now)
	if err != nil {
		return err
	}

	set := abstractions.Document{abstractions.FieldUpdatedAt: now.UTC()}
	if edit.Title != nil {
		set[abstractions.FieldTitle] = edit.Title.String()
	}
	if edit.SlugChanged(currentSlug) {
		set[abstractions.FieldSlug] = edit.Slug
	}
	if edit.Description != nil {
		set[abstractions.FieldDescription] = edit.Description.String()
	}

	if err := h.store.UpdateByID(ctx, abstractions.CollectionTopics, cmd.TopicID, set); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewNotFoundError("Topic")
		}
		return duplicateTitle(err, "topic")
	}

	publishEvents(ctx, h.eventBus, h.logger, edit)
	return nil
}

// IncrementTopicViewsHandler bumps the view counter of a topic
type IncrementTopicViewsHandler struct {
	store  ports.Store
	logger *zap.Logger
}

// NewIncrementTopicViewsHandler creates a new handler instance
func NewIncrementTopicViewsHandler(store ports.Store, logger *zap.Logger) *IncrementTopicViewsHandler {
	return &IncrementTopicViewsHandler{store: store, logger: logger}
}

// Handle normalizes a missing or corrupt counter to 0 and then adds exactly one
func (h *IncrementTopicViewsHandler) Handle(ctx context.Context, cmd commands.IncrementTopicViewsCommand) error {
	topic, err := ports.Lookup(ctx, h.store, abstractions.CollectionTopics, cmd.TopicID)
	if err != nil {
		return err
	}

	if stored := topic[abstractions.FieldViews]; !isStoredCount(stored) {
		normalized, _ := abstractions.AsCount(stored)
		h.logger.Warn("Normalizing topic view counter",
			zap.String("topic_id", cmd.TopicID),
			zap.Any("stored", stored),
			zap.Int("normalized", normalized),
		)
		if err := h.store.UpdateByID(ctx, abstractions.CollectionTopics, cmd.TopicID,
			abstractions.Document{abstractions.FieldViews: normalized}); err != nil {
			return err
		}
	}

	return h.store.Increment(ctx, abstractions.CollectionTopics, cmd.TopicID, abstractions.FieldViews, 1)
}

// duplicateTitle rewrites a unique-field conflict into a message about the title
func duplicateTitle(err error, entity string) error {
	if pkgerrors.IsConflict(err) {
		return pkgerrors.NewConflictError("A " + entity + " with this title already exists").WithCause(err)
	}
	return err
}

// isStoredCount reports whether v is an integer counter the store can increment
func isStoredCount(v any) bool {
	switch n := v.(type) {
	case int:
		return n >= 0
	case int32:
		return n >= 0
	case int64:
		return n >= 0
	}
	return false
}
