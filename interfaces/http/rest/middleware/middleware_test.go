package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"forum-api/pkg/auth"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{Email: "alice@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, nil
}

func callerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := common.GetUserID(r.Context())
		if !ok {
			userID = "anonymous"
		}
		w.Write([]byte(userID))
	})
}

func TestAuthenticate(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := Authenticate(stubValidator{}, zap.New(core))(callerEcho())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer good", want: "u1"},
		{name: "lowercase scheme", header: "bearer good", want: "u1"},
		{name: "bare token", header: "good", want: "u1"},
		{name: "no header", header: "", want: "anonymous"},
		{name: "invalid token", header: "Bearer forged", want: "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
	assert.Equal(t, 1, logs.FilterMessage("Ignoring invalid token").Len())
}

type denyAll struct{ err error }

func (d denyAll) Allow(ctx context.Context, key string) (bool, error) { return false, d.err }
func (d denyAll) Reset(ctx context.Context, key string) error        { return nil }

func TestRateLimit(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)

	t.Run("over budget", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RateLimit(denyAll{}, errs, zap.NewNop())(callerEcho()).
			ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RateLimit(denyAll{err: errors.New("boom")}, errs, zap.NewNop())(callerEcho()).
			ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("real limiter", func(t *testing.T) {
		handler := RateLimit(auth.NewTokenBucketLimiter(1, time.Hour), errs, zap.NewNop())(callerEcho())
		codes := make([]int, 0, 2)
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

type recordedRequest struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	requests []recordedRequest
}

func (m *recordingMetrics) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	m.requests = append(m.requests, recordedRequest{method, route, status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	metrics := &recordingMetrics{}
	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/topics/{topicID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/topics/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, metrics.requests, 2)
	assert.Equal(t, recordedRequest{"GET", "/api/v1/topics/{topicID}", http.StatusTeapot}, metrics.requests[0])
	assert.Equal(t, http.StatusNotFound, metrics.requests[1].status)
}

func TestLogger_RecordsCaller(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Authenticate(stubValidator{}, zap.NewNop())(Logger(zap.New(core))(callerEcho()))
	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	req.Header.Set("Authorization", "Bearer good")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["userID"])
	assert.Equal(t, "/topics", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}
