package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forum-api/application/ports"
	pkgerrors "forum-api/pkg/errors"
)

// JobLock is a process-local ports.JobLock
type JobLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

var _ ports.JobLock = (*JobLock)(nil)

// NewJobLock creates an empty lock table
func NewJobLock() *JobLock {
	return &JobLock{held: make(map[string]time.Time), clock: time.Now}
}

// Acquire takes the named lock until release is called or ttl passes
func (l *JobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.FromContext("acquire lock", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expires, ok := l.held[name]; ok && now.Before(expires) {
		return nil, pkgerrors.NewConflictError(fmt.Sprintf("job %s is already running", name))
	}
	expires := now.Add(ttl)
	l.held[name] = expires

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[name].Equal(expires) {
			delete(l.held, name)
		}
		return nil
	}, nil
}
