package di

import (
	"go.uber.org/zap"

	"forum-api/application/commands/bus"
	"forum-api/application/ports"
	querybus "forum-api/application/queries/bus"
	"forum-api/application/services"
	"forum-api/infrastructure/config"
	"forum-api/infrastructure/observability"
	"forum-api/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	LogLevel    zap.AtomicLevel
	Store       ports.Store
	JobLock     ports.JobLock
	EventBus    ports.EventBus
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Cache       ports.Cache
	Metrics     *observability.Collector
	Forum       *services.ForumService
	Auth        *services.AuthService
	Maintenance *services.MaintenanceService
	Router      *rest.Router
}
