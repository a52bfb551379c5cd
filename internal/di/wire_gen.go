// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"CoinSentry/pkg/config"
	"CoinSentry/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger := ProvideLogger(cfg)
	marketStream := ProvideMarketStream(cfg)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	samplePublisher := ProvideSamplePublisher(producer, cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	barStorage := ProvideBarStorage(client, cfg)
	store := ProvideHistoryStore(cfg, logger)
	metrics := ProvideMetrics()
	sampleProcessor := ProvideSampleProcessor(samplePublisher, barStorage, store, metrics, cfg)
	sampleCollector := ProvideSampleCollector(marketStream, sampleProcessor, metrics)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	kafkaSamplesHandler := ProvideKafkaSamplesHandler(store, barStorage, metrics, cfg)
	barProvider := ProvideBarProvider(cfg, client, logger)
	technicalAnalyzer := ProvideTechnicalAnalyzer(cfg, logger)
	service, err := ProvideCacheService(cfg)
	if err != nil {
		return nil, err
	}
	analysisUseCase := ProvideAnalysisUseCase(barProvider, technicalAnalyzer, service, logger)
	anomalyDetector := ProvideAnomalyDetector(cfg, store, logger)
	alertPublisher := ProvideAlertPublisher(producer, cfg)
	marketScanUseCase := ProvideMarketScanUseCase(anomalyDetector, alertPublisher, metrics, logger)
	barsUseCase := ProvideBarsUseCase(barProvider)
	redisQueue := ProvideScanQueue(cfg, logger, marketScanUseCase)
	app := ProvideApp(cfg, logger, sampleCollector, consumer, kafkaSamplesHandler, client, store, analysisUseCase, marketScanUseCase, barsUseCase, redisQueue)
	return app, nil
}
