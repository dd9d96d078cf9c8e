package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"forum-api/interfaces/http/rest/handlers"
	"forum-api/interfaces/http/rest/middleware"
	v1 "forum-api/interfaces/http/rest/v1"
	"forum-api/pkg/auth"
	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
	"forum-api/pkg/observability"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options toggles the optional parts of the router
type Options struct {
	RequestTimeout time.Duration
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool

	// AuthRequestsPerMinute limits the credential endpoints per client IP, 0 disables it
	AuthRequestsPerMinute int
}

// Router creates and configures the HTTP router
type Router struct {
	forum     handlers.Forum
	accounts  handlers.Accounts
	validator middleware.TokenValidator
	store     Pinger
	graphql   http.Handler
	metrics   *middlewareMetrics
	tracer    *observability.Tracer
	options   Options
	logger    *zap.Logger
}

type middlewareMetrics struct {
	recorder middleware.HTTPMetrics
	handler  http.Handler
}

// NewRouter creates a new router instance
func NewRouter(
	forum handlers.Forum,
	accounts handlers.Accounts,
	validator middleware.TokenValidator,
	store Pinger,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		forum:     forum,
		accounts:  accounts,
		validator: validator,
		store:     store,
		options:   options,
		logger:    logger,
	}
}

// WithGraphQL serves h at /graphql
func (rt *Router) WithGraphQL(h http.Handler) *Router {
	rt.graphql = h
	return rt
}

// WithMetrics records every request and serves the exposition at /metrics
func (rt *Router) WithMetrics(recorder middleware.HTTPMetrics, exposition http.Handler) *Router {
	rt.metrics = &middlewareMetrics{recorder: recorder, handler: exposition}
	return rt
}

// WithTracing opens an X-Ray segment for every request
func (rt *Router) WithTracing(tracer *observability.Tracer) *Router {
	rt.tracer = tracer
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errs := pkgerrors.NewErrorHandler(rt.logger, rt.options.Debug)

	// Global middleware
	if rt.tracer != nil {
		router.Use(rt.tracer.Middleware)
	}
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errs.Middleware)
	router.Use(middleware.Authenticate(rt.validator, rt.logger))
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics.recorder))
	}

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.handler)
	}

	router.Group(func(r chi.Router) {
		if rt.options.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(rt.options.RequestTimeout))
		}

		if rt.graphql != nil {
			r.Method(http.MethodPost, "/graphql", rt.graphql)
		}

		var authLimit func(http.Handler) http.Handler
		if rt.options.AuthRequestsPerMinute > 0 {
			authLimit = middleware.RateLimit(auth.NewPerMinuteLimiter(rt.options.AuthRequestsPerMinute), errs, rt.logger)
		}
		r.Mount("/api/v1", v1.NewRouter(v1.Handlers{
			Auth:    handlers.NewAuthHandler(rt.accounts, errs, rt.logger),
			Users:   handlers.NewUserHandler(rt.forum, errs),
			Courses: handlers.NewCourseHandler(rt.forum, errs, rt.logger),
			Topics:  handlers.NewTopicHandler(rt.forum, errs, rt.logger),
			Comment: handlers.NewCommentHandler(rt.forum, errs),
		}, authLimit))
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck pings the document store
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := rt.store.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
