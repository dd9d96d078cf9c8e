package di

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"forum-api/application/commands"
	"forum-api/application/commands/bus"
	commands_handlers "forum-api/application/commands/handlers"
	"forum-api/application/pagination"
	"forum-api/application/population"
	"forum-api/application/ports"
	"forum-api/application/queries"
	querybus "forum-api/application/queries/bus"
	queries_handlers "forum-api/application/queries/handlers"
	"forum-api/application/services"
	"forum-api/application/views"
	domainconfig "forum-api/domain/config"
	"forum-api/domain/core/valueobjects"
	"forum-api/infrastructure/config"
	"forum-api/infrastructure/messaging"
	"forum-api/infrastructure/messaging/eventbridge"
	"forum-api/infrastructure/observability"
	"forum-api/infrastructure/persistence/dynamodb"
	"forum-api/infrastructure/persistence/memory"
	"forum-api/infrastructure/persistence/mongodb"
	"forum-api/infrastructure/persistence/resilience"
	"forum-api/interfaces/graphql"
	"forum-api/interfaces/http/rest"
	"forum-api/pkg/auth"
	pkgobservability "forum-api/pkg/observability"
)

const (
	metricsNamespace = "forum"
	serviceName      = "forum-api"
)

// ProvideLogLevel creates the shared level the config watcher adjusts at runtime
func ProvideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}
	return level
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName), zap.String("environment", cfg.Environment)), nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracer returns the X-Ray tracer, or nil when tracing is off
func ProvideTracer(cfg *config.Config) *pkgobservability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return pkgobservability.NewTracer(serviceName)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client. DYNAMODB_ENDPOINT points it
// at DynamoDB Local.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideStore opens the configured document store and wraps it with
// metrics, tracing, the circuit breaker and error translation.
func ProvideStore(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	collector *observability.Collector,
	tracer *pkgobservability.Tracer,
	logger *zap.Logger,
) (ports.Store, func(), error) {
	var inner ports.Store
	cleanup := func() {}

	switch cfg.StoreDriver {
	case config.DriverMongoDB:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, nil, fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}
		inner = store
		cleanup = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
			}
		}
	case config.DriverDynamoDB:
		inner = dynamodb.NewStore(client, cfg.DynamoDBTable, cfg.DynamoDBIndex, logger)
	case config.DriverMemory:
		inner = memory.NewStore(logger)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	interceptors := []resilience.Interceptor{resilience.Metrics(collector)}
	if tracer != nil {
		interceptors = append(interceptors, resilience.Tracing(tracer))
	}
	if cfg.EnableCircuitBreaker {
		interceptors = append(interceptors, resilience.Breaker(resilience.DefaultBreakerConfig(), logger))
	}
	interceptors = append(interceptors, resilience.Translate())

	logger.Info("Document store ready", zap.String("driver", cfg.StoreDriver))
	return resilience.Decorate(inner, interceptors...), cleanup, nil
}

// ProvideJobLock returns a DynamoDB lock when the table is configured, so
// maintenance jobs are exclusive across instances, and a process lock otherwise.
func ProvideJobLock(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.JobLock {
	if cfg.DynamoDBTable == "" {
		return memory.NewJobLock()
	}
	owner, err := os.Hostname()
	if err != nil || owner == "" {
		owner = uuid.NewString()
	}
	return dynamodb.NewJobLock(client, cfg.DynamoDBTable, owner, logger)
}

// ProvideEventBus publishes to EventBridge when a bus is configured and to the
// log otherwise. Either way every event is counted.
func ProvideEventBus(cfg *config.Config, client *awseventbridge.Client, collector *observability.Collector, logger *zap.Logger) ports.EventBus {
	var next ports.EventBus
	if cfg.EventBusName != "" {
		next = eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	} else {
		next = messaging.NewLogPublisher(logger)
	}
	return messaging.NewInstrumentedPublisher(next, collector)
}

// ProvideMailer creates the mailer for password reset links
func ProvideMailer(logger *zap.Logger) ports.Mailer {
	return messaging.NewLogMailer(logger)
}

// ProvideJWTManager creates the token manager. Outside production a missing
// secret is replaced by a random one, which invalidates tokens on restart.
func ProvideJWTManager(cfg *config.Config, logger *zap.Logger) (*auth.JWTManager, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		logger.Warn("JWT_SECRET not set, using a random secret")
		secret = uuid.NewString()
	}
	return auth.NewJWTManager(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.Audience(),
		TTL:       cfg.TokenTTL,
	})
}

// ProvidePasswordHasher creates the bcrypt hasher
func ProvidePasswordHasher() ports.PasswordHasher {
	return auth.NewBcryptHasher(0)
}

// ProvideDomainConfig returns the business rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.Domain()
}

// ProvideClock returns the wall clock
func ProvideClock() ports.Clock {
	return time.Now
}

// ProvideSlugFunc returns the slug derivation used for new titles
func ProvideSlugFunc() valueobjects.SlugFunc {
	return valueobjects.DeriveSlug
}

// ProvideQueryCache returns the query cache, or nil when caching is off
func ProvideQueryCache(cfg *config.Config, collector *observability.Collector) ports.Cache {
	if cfg.QueryCacheTTLSeconds <= 0 {
		return nil
	}
	return NewInMemoryCache(collector)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// commandHandler builds an adapter for a handler of command type C
func commandHandler[C bus.Command](handle func(context.Context, C) error) *CommandHandlerAdapter {
	return &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			typed, ok := cmd.(C)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return handle(ctx, typed)
		},
	}
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	store ports.Store,
	eventBus ports.EventBus,
	slugify valueobjects.SlugFunc,
	domain *domainconfig.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	commandBus.Use(bus.ContextMiddleware(), bus.LoggingMiddleware(logger))

	createTopic := commands_handlers.NewCreateTopicHandler(store, eventBus, slugify, domain, now, logger)
	updateTopic := commands_handlers.NewUpdateTopicHandler(store, eventBus, slugify, domain, now, logger)
	incrementViews := commands_handlers.NewIncrementTopicViewsHandler(store, logger)
	createComment := commands_handlers.NewCreateCommentHandler(store, eventBus, domain, now, logger)
	createReply := commands_handlers.NewCreateReplyHandler(store, eventBus, domain, now, logger)
	setLike := commands_handlers.NewSetLikeHandler(store, eventBus, now, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateTopicCommand{}, commandHandler(createTopic.Handle)},
		{commands.UpdateTopicCommand{}, commandHandler(updateTopic.Handle)},
		{commands.IncrementTopicViewsCommand{}, commandHandler(incrementViews.Handle)},
		{commands.CreateCommentCommand{}, commandHandler(createComment.Handle)},
		{commands.CreateReplyCommand{}, commandHandler(createReply.Handle)},
		{commands.SetLikeCommand{}, commandHandler(setLike.Handle)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// queryHandler builds an adapter for a handler of query type Q
func queryHandler[Q querybus.Query, R any](handle func(context.Context, Q) (R, error)) *QueryHandlerAdapter {
	return &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			typed, ok := query.(Q)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return handle(ctx, typed)
		},
	}
}

// ProvideReader creates the read side shared by all query handlers
func ProvideReader(store ports.Store, domain *domainconfig.DomainConfig, now ports.Clock, logger *zap.Logger) *queries_handlers.Reader {
	return queries_handlers.NewReader(
		store,
		population.NewResolver(store, logger),
		views.NewMaterializer(now),
		pagination.NewPaginator(store, domain.DefaultPageSize, domain.MaxPageSize, logger),
		logger,
	)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	reader *queries_handlers.Reader,
	cache ports.Cache,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	// Outermost first: logging sees cache hits, metrics time the cached path
	queryBus.Use(querybus.LoggingMiddleware(logger))
	if cfg.EnableMetrics {
		queryBus.Use(querybus.NewMetricsMiddleware(collector).Wrap)
	}
	if cache != nil {
		queryBus.Use(querybus.NewCachingMiddleware(cache, cfg.QueryCacheTTLSeconds).Wrap)
	}

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetAllUsersQuery{}, queryHandler(queries_handlers.NewGetAllUsersHandler(reader).Handle)},
		{queries.GetUserProfileQuery{}, queryHandler(queries_handlers.NewGetUserProfileHandler(reader).Handle)},
		{queries.GetAllCoursesQuery{}, queryHandler(queries_handlers.NewGetAllCoursesHandler(reader).Handle)},
		{queries.GetCourseByIDQuery{}, queryHandler(queries_handlers.NewGetCourseByIDHandler(reader).Handle)},
		{queries.GetCourseBySlugQuery{}, queryHandler(queries_handlers.NewGetCourseBySlugHandler(reader).Handle)},
		{queries.GetTopicsByCourseQuery{}, queryHandler(queries_handlers.NewGetTopicsByCourseHandler(reader).Handle)},
		{queries.GetTopicByIDQuery{}, queryHandler(queries_handlers.NewGetTopicByIDHandler(reader).Handle)},
		{queries.GetTopicBySlugQuery{}, queryHandler(queries_handlers.NewGetTopicBySlugHandler(reader).Handle)},
		{queries.ListTopicsQuery{}, queryHandler(queries_handlers.NewListTopicsHandler(reader).Handle)},
		{queries.GetCommentsByTopicQuery{}, queryHandler(queries_handlers.NewGetCommentsByTopicHandler(reader).Handle)},
		{queries.GetCommentByIDQuery{}, queryHandler(queries_handlers.NewGetCommentByIDHandler(reader).Handle)},
		{queries.GetRepliesByCommentQuery{}, queryHandler(queries_handlers.NewGetRepliesByCommentHandler(reader).Handle)},
		{queries.GetReplyByIDQuery{}, queryHandler(queries_handlers.NewGetReplyByIDHandler(reader).Handle)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideForumService creates the forum service
func ProvideForumService(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, cache ports.Cache, logger *zap.Logger) *services.ForumService {
	return services.NewForumService(commandBus, queryBus, cache, logger)
}

// ProvideAuthService creates the account service
func ProvideAuthService(
	cfg *config.Config,
	store ports.Store,
	hasher ports.PasswordHasher,
	tokens *auth.JWTManager,
	mailer ports.Mailer,
	eventBus ports.EventBus,
	domain *domainconfig.DomainConfig,
	now ports.Clock,
	logger *zap.Logger,
) *services.AuthService {
	return services.NewAuthService(store, hasher, tokens, mailer, eventBus, domain, now, cfg.ResetURLBase, logger)
}

// ProvideMaintenanceService creates the maintenance job runner
func ProvideMaintenanceService(
	store ports.Store,
	slugify valueobjects.SlugFunc,
	now ports.Clock,
	lock ports.JobLock,
	logger *zap.Logger,
) *services.MaintenanceService {
	return services.NewMaintenanceService(store, slugify, now, logger).WithLock(lock)
}

// ProvideGraphQLHandler parses the GraphQL schema
func ProvideGraphQLHandler(forum *services.ForumService, accounts *services.AuthService, logger *zap.Logger) (http.Handler, error) {
	return graphql.NewHandler(forum, accounts, logger)
}

// ProvideRouter assembles the HTTP router
func ProvideRouter(
	cfg *config.Config,
	forum *services.ForumService,
	accounts *services.AuthService,
	tokens *auth.JWTManager,
	store ports.Store,
	graphqlHandler http.Handler,
	collector *observability.Collector,
	tracer *pkgobservability.Tracer,
	logger *zap.Logger,
) *rest.Router {
	router := rest.NewRouter(forum, accounts, tokens, store, rest.Options{
		RequestTimeout:        cfg.RequestTimeout,
		EnableCORS:            cfg.EnableCORS,
		AllowedOrigins:        cfg.AllowedOrigins,
		Debug:                 cfg.IsDevelopment(),
		AuthRequestsPerMinute: authRequestsPerMinute,
	}, logger).WithGraphQL(graphqlHandler)

	if cfg.EnableMetrics {
		router.WithMetrics(collector, collector.Handler())
	}
	if tracer != nil {
		router.WithTracing(tracer)
	}
	return router
}

// authRequestsPerMinute limits register, login and password reset per client IP
const authRequestsPerMinute = 20
