//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"TipFusion/pkg/config"
	"TipFusion/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideDecisionStore,
		ProvideBankrollHistory,
		ProvideBankrollStore,
		ProvideModelStatsStore,
		ProvideDecisionPublisher,

		// Domain services
		ProvideEngineRegistry,
		ProvideModelSelector,
		ProvidePools,
		ProvideTipSelector,
		ProvideAvailability,
		ProvideEventBook,
		ProvideHub,

		// Use cases
		ProvideOrchestrator,
		ProvideDecisionService,
		ProvideBankrollService,
		ProvideModelCatalog,
		ProvideStrategy,
		ProvideLiveProcessor,
		ProvideLiveCollector,
		ProvideKafkaOddsHandler,
		ProvideScheduler,
		ProvideJanitor,
		ProvideSettlementQueue,
		ProvideLogPublisher,

		// Transport
		ProvideTipsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
