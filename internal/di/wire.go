//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"OrderFlow/internal/usecase"
	"OrderFlow/pkg/config"
	"OrderFlow/pkg/server"
)

var engineSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideFetchers,
	ProvideOrchestrator,
	ProvideEngine,
)

var serviceSet = wire.NewSet(
	engineSet,
	ProvideCacheService,
	ProvideReportCache,
	ProvideKafkaProducer,
	ProvidePublisher,
	ProvideService,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		serviceSet,

		// Background workers
		ProvideScheduler,
		ProvideConsumer,

		// Application server
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeService wires the service alone, for one-shot runs.
func InitializeService(cfg *config.Config) (*usecase.OrderflowService, func(), error) {
	wire.Build(serviceSet)
	return nil, nil, nil
}
