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
)

// CreateCommentHandler handles comment creation
type CreateCommentHandler struct {
	store    ports.Store
	eventBus ports.EventBus
	domain   *config.DomainConfig
	now      ports.Clock
	logger   *zap.Logger
}

// NewCreateCommentHandler creates a new handler instance
func NewCreateCommentHandler(
	store ports.Store,
	eventBus ports.EventBus,
	domain *config.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) *CreateCommentHandler {
	return &CreateCommentHandler{
		store:    store,
		eventBus: eventBus,
		domain:   domain,
		now:      now,
		logger:   logger,
	}
}

// Handle executes the create comment command
func (h *CreateCommentHandler) Handle(ctx context.Context, cmd commands.CreateCommentCommand) error {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionTopics, cmd.TopicID); err != nil {
		return err
	}

	id, err := valueobjects.ParseEntityID("comment", cmd.CommentID)
	if err != nil {
		return err
	}
	text, err := valueobjects.NewText("text", cmd.Text, h.domain.MaxTextLength)
	if err != nil {
		return err
	}

	comment, err := entities.NewComment(id, cmd.TopicID, cmd.UserID, text, h.now())
	if err != nil {
		return err
	}
	if err := h.store.Insert(ctx, abstractions.CollectionComments, abstractions.FromComment(comment)); err != nil {
		return err
	}

	appendChild(ctx, h.store, h.logger, abstractions.CollectionTopics, cmd.TopicID, abstractions.FieldComments, comment.ID.String())
	publishEvents(ctx, h.eventBus, h.logger, comment)

	h.logger.Debug("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("topic_id", cmd.TopicID),
	)
	return nil
}

// CreateReplyHandler handles reply creation
type CreateReplyHandler struct {
	store    ports.Store
	eventBus ports.EventBus
	domain   *config.DomainConfig
	now      ports.Clock
	logger   *zap.Logger
}

// NewCreateReplyHandler creates a new handler instance
func NewCreateReplyHandler(
	store ports.Store,
	eventBus ports.EventBus,
	domain *config.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) *CreateReplyHandler {
	return &CreateReplyHandler{
		store:    store,
		eventBus: eventBus,
		domain:   domain,
		now:      now,
		logger:   logger,
	}
}

// Handle executes the create reply command
func (h *CreateReplyHandler) Handle(ctx context.Context, cmd commands.CreateReplyCommand) error {
	if _, err := ports.Lookup(ctx, h.store, abstractions.CollectionComments, cmd.CommentID); err != nil {
		return err
	}

	id, err := valueobjects.ParseEntityID("reply", cmd.ReplyID)
	if err != nil {
		return err
	}
	text, err := valueobjects.NewText("text", cmd.Text, h.domain.MaxTextLength)
	if err != nil {
		return err
	}

	reply, err := entities.NewReply(id, cmd.CommentID, cmd.UserID, text, h.now())
	if err != nil {
		return err
	}
	if err := h.store.Insert(ctx, abstractions.CollectionReplies, abstractions.FromReply(reply)); err != nil {
		return err
	}

	appendChild(ctx, h.store, h.logger, abstractions.CollectionComments, cmd.CommentID, abstractions.FieldReplies, reply.ID.String())
	publishEvents(ctx, h.eventBus, h.logger, reply)
	return nil
}
