package ports

import (
	"context"
	"time"

	"forum-api/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus is the publisher the write path depends on.
type EventBus interface {
	EventPublisher
}

// Mailer delivers outbound email
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues access tokens for authenticated users
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// Clock returns the current time. Tests replace it to get stable timestamps.
type Clock func() time.Time

// JobLock keeps a named maintenance job from running twice at the same time.
// Acquire fails with a conflict error while another holder has the lock.
type JobLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, err error)
}
