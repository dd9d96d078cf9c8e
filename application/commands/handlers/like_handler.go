package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"forum-api/application/commands"
	"forum-api/application/ports"
	"forum-api/domain/events"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// SetLikeHandler adds or removes a like on a comment or reply
type SetLikeHandler struct {
	store    ports.Store
	eventBus ports.EventBus
	now      ports.Clock
	logger   *zap.Logger
}

// NewSetLikeHandler creates a new handler instance
func NewSetLikeHandler(store ports.Store, eventBus ports.EventBus, now ports.Clock, logger *zap.Logger) *SetLikeHandler {
	return &SetLikeHandler{
		store:    store,
		eventBus: eventBus,
		now:      now,
		logger:   logger,
	}
}

// Handle executes the set like command. Liking twice is a conflict; unliking
// something the caller never liked leaves the set unchanged.
func (h *SetLikeHandler) Handle(ctx context.Context, cmd commands.SetLikeCommand) error {
	collection, liked, unliked := likeTarget(cmd.Target)

	if _, err := ports.Lookup(ctx, h.store, collection, cmd.TargetID); err != nil {
		return err
	}

	eventType := unliked
	if cmd.Liked {
		added, err := h.store.AddToSet(ctx, collection, cmd.TargetID, abstractions.FieldLikes, cmd.UserID)
		if err != nil {
			return err
		}
		if !added {
			return pkgerrors.NewConflictError(fmt.Sprintf("You have already liked this %s", cmd.Target))
		}
		eventType = liked
	} else if err := h.store.Pull(ctx, collection, cmd.TargetID, abstractions.FieldLikes, cmd.UserID); err != nil {
		return err
	}

	event := events.NewLikeToggled(eventType, cmd.TargetID, cmd.UserID, h.now())
	if h.eventBus != nil {
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish like event",
				zap.String("event_type", eventType),
				zap.String("target_id", cmd.TargetID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func likeTarget(target commands.LikeTarget) (collection, liked, unliked string) {
	if target == commands.LikeTargetReply {
		return abstractions.CollectionReplies, events.TypeReplyLiked, events.TypeReplyUnliked
	}
	return abstractions.CollectionComments, events.TypeCommentLiked, events.TypeCommentUnliked
}
