// Package messaging holds the outbound adapters that are not a store:
// domain event publishers and the mailer.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/domain/events"
)

// LogPublisher writes domain events to the log. It is the publisher when no
// event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ ports.EventBus = (*LogPublisher)(nil)

// NewLogPublisher creates a log publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs one event
func (p *LogPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("event_type", event.GetEventType()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs every event
func (p *LogPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// EventMetrics counts published events
type EventMetrics interface {
	RecordEvent(eventType string, err error)
}

// InstrumentedPublisher counts the events that pass through it
type InstrumentedPublisher struct {
	next    ports.EventBus
	metrics EventMetrics
}

var _ ports.EventBus = (*InstrumentedPublisher)(nil)

// NewInstrumentedPublisher wraps next
func NewInstrumentedPublisher(next ports.EventBus, metrics EventMetrics) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, metrics: metrics}
}

// Publish forwards one event
func (p *InstrumentedPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	err := p.next.Publish(ctx, event)
	p.metrics.RecordEvent(event.GetEventType(), err)
	return err
}

// PublishBatch forwards the batch and counts each event with the batch outcome
func (p *InstrumentedPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	err := p.next.PublishBatch(ctx, domainEvents)
	for _, event := range domainEvents {
		p.metrics.RecordEvent(event.GetEventType(), err)
	}
	return err
}
