package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"forum-api/pkg/auth"
	pkgerrors "forum-api/pkg/errors"
)

// RateLimit rejects clients that exceed the limiter's budget, keyed by client IP
func RateLimit(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)
			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				// A broken limiter must not lock everyone out
				logger.Error("Rate limiter error", zap.Error(err))
			} else if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
