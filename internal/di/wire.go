//go:build wireinject
// +build wireinject

package di

import (
	"CryptoBooster/pkg/config"
	"CryptoBooster/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Repositories
		ProvidePositionArchive,
		ProvidePositionPublisher,
		ProvideMarketDataSource,
		ProvidePriceStream,

		// Use cases
		ProvidePositionStore,
		ProvideSignalEditor,
		ProvideChartSeriesUseCase,
		ProvidePositionEventsHandler,
		ProvideTickCollector,
		ProvideJobQueue,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
