package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"forum-api/pkg/observability"
	pkgerrors "forum-api/pkg/errors"
)

// StoreMetrics receives one observation per store call
type StoreMetrics interface {
	RecordStoreOperation(operation, collection string, duration time.Duration, err error)
}

// Metrics times every call
func Metrics(m StoreMetrics) Interceptor {
	return func(ctx context.Context, op Operation, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		m.RecordStoreOperation(op.Name, op.Collection, time.Since(start), err)
		return err
	}
}

// Tracing records every call as an X-Ray subsegment
func Tracing(tracer *observability.Tracer) Interceptor {
	return func(ctx context.Context, op Operation, next func(context.Context) error) error {
		return tracer.TraceFunction(ctx, "store."+op.Name, map[string]string{
			"collection": op.Collection,
		}, next)
	}
}

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that opens the circuit once
	// MinRequests calls have been seen.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used in production
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "document-store",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// Breaker fails fast with an Unavailable error while the store keeps
// failing. Only infrastructure errors count as failures; not found, conflict
// and validation answers mean the store is healthy.
func Breaker(config BreakerConfig, logger *zap.Logger) Interceptor {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isInfrastructureError(err)
		},
	})

	return func(ctx context.Context, op Operation, next func(context.Context) error) error {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, next(ctx)
		})
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return pkgerrors.NewUnavailableError("document store").WithCause(err).
				WithDetails(map[string]interface{}{"operation": op.Name, "collection": op.Collection})
		}
		return err
	}
}

func isInfrastructureError(err error) bool {
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		return true
	}
	switch appErr.Type {
	case pkgerrors.ErrorTypeDatabase, pkgerrors.ErrorTypeTimeout, pkgerrors.ErrorTypeUnavailable, pkgerrors.ErrorTypeInternal:
		return true
	}
	return false
}

// Translate turns context expiry into Timeout and any error that is not an
// AppError yet into a Database error.
func Translate() Interceptor {
	return func(ctx context.Context, op Operation, next func(context.Context) error) error {
		err := next(ctx)
		if err == nil || pkgerrors.IsAppError(err) {
			return err
		}
		if appErr := pkgerrors.FromContext(op.Name, err); appErr != nil {
			return appErr
		}
		if ctx.Err() != nil {
			return pkgerrors.FromContext(op.Name, ctx.Err()).WithCause(err)
		}
		return pkgerrors.NewDatabaseError(op.Name, err)
	}
}
