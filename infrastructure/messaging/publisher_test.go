package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"forum-api/domain/events"
)

type mockBus struct {
	mock.Mock
}

func (m *mockBus) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockBus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	return m.Called(ctx, domainEvents).Error(0)
}

type countingMetrics map[string]int

func (c countingMetrics) RecordEvent(eventType string, err error) {
	key := eventType
	if err != nil {
		key += ":failed"
	}
	c[key]++
}

func TestInstrumentedPublisher_PublishBatch(t *testing.T) {
	bus := &mockBus{}
	metrics := countingMetrics{}
	batch := []events.DomainEvent{
		events.NewCommentCreated("c1", "t1", "u1", time.Now()),
		events.NewReplyCreated("r1", "c1", "u1", time.Now()),
	}
	bus.On("PublishBatch", mock.Anything, batch).Return(nil).Once()
	bus.On("PublishBatch", mock.Anything, batch).Return(errors.New("down")).Once()

	publisher := NewInstrumentedPublisher(bus, metrics)

	assert.NoError(t, publisher.PublishBatch(context.Background(), batch))
	assert.Error(t, publisher.PublishBatch(context.Background(), batch))
	assert.Equal(t, countingMetrics{
		events.TypeCommentCreated:             1,
		events.TypeReplyCreated:               1,
		events.TypeCommentCreated + ":failed": 1,
		events.TypeReplyCreated + ":failed":   1,
	}, metrics)
	bus.AssertExpectations(t)
}

func TestLogPublisher_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewLogPublisher(zap.New(core))

	err := publisher.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewTopicCreated("t1", "c1", "u1", "slug", time.Now()),
	})

	assert.NoError(t, err)
	entries := logs.FilterField(zap.String("event_type", events.TypeTopicCreated)).All()
	assert.Len(t, entries, 1)
}

func TestLogMailer_KeepsLinkOutOfInfoLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer(zap.New(core))

	assert.NoError(t, mailer.SendPasswordReset(context.Background(), "a@b.co", "https://x/reset?token=secret"))
	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, "secret")
		}
	}
}
