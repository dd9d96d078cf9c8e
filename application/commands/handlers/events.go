package handlers

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/domain/events"
)

// eventSource is implemented by entities that raise domain events
type eventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// publishEvents sends the entity's pending events. Publishing happens after
// the write succeeded, so a failure is logged and never undoes the write.
func publishEvents(ctx context.Context, bus ports.EventBus, logger *zap.Logger, source eventSource) {
	pending := source.GetUncommittedEvents()
	if len(pending) == 0 || bus == nil {
		return
	}
	if err := bus.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(pending)),
			zap.String("event_type", pending[0].GetEventType()),
			zap.Error(err),
		)
		return
	}
	source.MarkEventsAsCommitted()
}

// appendChild performs the separate, non-atomic step that links a new child
// into its parent's reference array. The child already exists, so a failure
// here is logged and the operation still succeeds.
func appendChild(ctx context.Context, store ports.Store, logger *zap.Logger, collection, parentID, field, childID string) {
	if err := store.Push(ctx, collection, parentID, field, childID); err != nil {
		logger.Error("Failed to link child to parent",
			zap.String("collection", collection),
			zap.String("parent_id", parentID),
			zap.String("field", field),
			zap.String("child_id", childID),
			zap.Error(err),
		)
	}
}
