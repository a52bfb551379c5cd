//go:build wireinject
// +build wireinject

package di

import (
	"CoinSentry/pkg/config"
	"CoinSentry/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCacheService,

		// Repositories (with business logic)
		ProvideBarStorage,
		ProvideSamplePublisher,
		ProvideAlertPublisher,
		ProvideBarProvider,
		ProvideMarketStream,

		// Domain services
		ProvideHistoryStore,
		ProvideTechnicalAnalyzer,
		ProvideAnomalyDetector,

		// Use cases
		ProvideSampleProcessor,
		ProvideSampleCollector,
		ProvideKafkaSamplesHandler,
		ProvideAnalysisUseCase,
		ProvideMarketScanUseCase,
		ProvideBarsUseCase,
		ProvideScanQueue,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
