//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"forum-api/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideCollector,
	ProvideTracer,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideStore,
	ProvideJobLock,
	ProvideEventBus,
	ProvideMailer,
	ProvideJWTManager,
	ProvidePasswordHasher,
	ProvideDomainConfig,
	ProvideClock,
	ProvideSlugFunc,
	ProvideQueryCache,
	ProvideCommandBus,
	ProvideReader,
	ProvideQueryBus,
	ProvideForumService,
	ProvideAuthService,
	ProvideMaintenanceService,
	ProvideGraphQLHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// closes the store connection.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
