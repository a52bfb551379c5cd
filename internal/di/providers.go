package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"CoinSentry/internal/domain/repository"
	domsvc "CoinSentry/internal/domain/service"
	"CoinSentry/internal/history"
	mid "CoinSentry/internal/middleware"
	internalrepo "CoinSentry/internal/repository"
	svccache "CoinSentry/internal/service/cache"
	"CoinSentry/internal/service/coingecko"
	"CoinSentry/internal/service/marketws"
	"CoinSentry/internal/service/ratelimit"
	"CoinSentry/internal/services/anomaly"
	"CoinSentry/internal/services/technical"
	"CoinSentry/internal/usecase"
	pkgcache "CoinSentry/pkg/cache"
	pkgch "CoinSentry/pkg/clickhouse"
	"CoinSentry/pkg/config"
	xhttp "CoinSentry/pkg/http"
	pkgkafka "CoinSentry/pkg/kafka"
	applogger "CoinSentry/pkg/logger"
	"CoinSentry/pkg/metrics"
	pkgqueue "CoinSentry/pkg/queue"
	"CoinSentry/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the process-wide structured logger.
func ProvideLogger(cfg *config.Config) *applogger.Logger {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
	if err != nil {
		return applogger.Nop()
	}
	return l
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "coinsentry"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".rt_bars_1m (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64, event_id String) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS " + db + ".rt_bars_5m (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64, event_id String) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBarStorage creates ClickHouse bar storage.
func ProvideBarStorage(chClient *pkgch.Client, cfg *config.Config) repository.BarStorage {
	return internalrepo.NewClickHouseBarStorage(chClient.DB(), cfg.ClickHouse.Database+".rt_bars_1m")
}

// ProvideSamplePublisher creates the Kafka publisher for raw samples.
func ProvideSamplePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SamplePublisher {
	return internalrepo.NewKafkaSamplePublisher(producer, cfg.Kafka.Topic)
}

// ProvideAlertPublisher creates the Kafka publisher for anomaly alerts.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	topic := cfg.Kafka.AlertsTopic
	if topic == "" {
		topic = "market-alerts"
	}
	return internalrepo.NewKafkaAlertPublisher(producer, topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaSamplesHandler registers the handler for the samples topic.
func ProvideKafkaSamplesHandler(hist *history.Store, store repository.BarStorage, m repository.Metrics, cfg *config.Config) *usecase.KafkaSamplesHandler {
	return usecase.NewKafkaSamplesHandler(cfg.Kafka.Topic, hist, store, m)
}

// ProvideMarketStream creates the exchange WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketws.New(
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideHistoryStore creates the rolling sample history, warmed from the
// last snapshot when one exists.
func ProvideHistoryStore(cfg *config.Config, l *applogger.Logger) *history.Store {
	hist := history.NewStore(history.DefaultCapacity)
	if cfg.History.SnapshotPath != "" {
		if err := hist.Load(cfg.History.SnapshotPath); err != nil {
			l.Warn("history snapshot load failed",
				applogger.String("path", cfg.History.SnapshotPath),
				applogger.Error(err))
		}
	}
	return hist
}

// ProvideTechnicalAnalyzer creates the indicator engine.
func ProvideTechnicalAnalyzer(cfg *config.Config, l *applogger.Logger) domsvc.TechnicalAnalyzer {
	return technical.NewAnalyzer(cfg.Analysis.Technical, l)
}

// ProvideAnomalyDetector creates the anomaly detection engine.
func ProvideAnomalyDetector(cfg *config.Config, hist *history.Store, l *applogger.Logger) domsvc.AnomalyDetector {
	return anomaly.NewDetector(cfg.Anomaly, hist, l)
}

// ProvideCacheService creates the analysis cache: layered Memory+Redis when
// Redis is enabled, memory-only otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Analysis.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Analysis.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Analysis.Redis.Password),
		pkgcache.WithRedisDB(cfg.Analysis.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideBarProvider selects the bar source: the REST market source when
// coin mappings are configured, the ClickHouse archive otherwise.
func ProvideBarProvider(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) repository.BarProvider {
	if len(cfg.CoinGecko.CoinIDs) > 0 {
		timeout := cfg.CoinGecko.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		var raw svccache.BytesCache = svccache.NewTTLCache()
		if cfg.Analysis.Redis.Enabled {
			raw = svccache.NewRedisCache(svccache.RedisConfig{
				Addr:     cfg.Analysis.Redis.Addr,
				Password: cfg.Analysis.Redis.Password,
				DB:       cfg.Analysis.Redis.DB,
			})
		}
		opts := []coingecko.Option{
			coingecko.WithLogger(l),
			coingecko.WithRawCache(raw),
		}
		if cfg.CoinGecko.BaseURL != "" {
			opts = append(opts, coingecko.WithBaseURL(cfg.CoinGecko.BaseURL))
		}
		if cfg.CoinGecko.APIKey != "" {
			opts = append(opts, coingecko.WithAPIKey(cfg.CoinGecko.APIKey))
		}
		return coingecko.New(
			cfg.CoinGecko.CoinIDs,
			xhttp.NewClient(xhttp.WithTimeout(timeout)),
			ratelimit.New(),
			opts...,
		)
	}
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideAnalysisUseCase creates the technical-analysis use case.
func ProvideAnalysisUseCase(provider repository.BarProvider, analyzer domsvc.TechnicalAnalyzer, c pkgcache.Service, l *applogger.Logger) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(provider, analyzer, c, l)
}

// ProvideMarketScanUseCase creates the anomaly-scan use case.
func ProvideMarketScanUseCase(detector domsvc.AnomalyDetector, alerts repository.AlertPublisher, m repository.Metrics, l *applogger.Logger) *usecase.MarketScanUseCase {
	return usecase.NewMarketScanUseCase(detector, alerts, m, l)
}

// ProvideBarsUseCase creates the bar retrieval use case.
func ProvideBarsUseCase(provider repository.BarProvider) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(provider)
}

// ProvideSampleProcessor creates the sample processor use case.
func ProvideSampleProcessor(
	pub repository.SamplePublisher,
	store repository.BarStorage,
	hist *history.Store,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SampleProcessor {
	return usecase.NewSampleProcessor(pub, store, hist, m, cfg.Backend.Type)
}

// ProvideSampleCollector creates the sample collector use case.
func ProvideSampleCollector(
	stream repository.MarketStream,
	processor *usecase.SampleProcessor,
	m repository.Metrics,
) *usecase.SampleCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewSampleCollector(stream, processor, m, pipe)
}

// ProvideScanQueue creates the Redis-backed job queue consuming scan
// requests. Nil when Redis is disabled; the app treats that as "no queue".
func ProvideScanQueue(cfg *config.Config, l *applogger.Logger, scan *usecase.MarketScanUseCase) *pkgqueue.RedisQueue {
	if !cfg.Analysis.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Analysis.Redis.Addr,
		Password: cfg.Analysis.Redis.Password,
		DB:       cfg.Analysis.Redis.DB,
	})
	job := usecase.NewScanJob(scan, l)
	return pkgqueue.NewRedisConsumer(l, &pkgqueue.QueueConfig{Workers: 2, RetryLimit: 3}, client, []pkgqueue.Job{job})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.SampleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSamplesHandler,
	chClient *pkgch.Client,
	hist *history.Store,
	analysis *usecase.AnalysisUseCase,
	scan *usecase.MarketScanUseCase,
	bars *usecase.BarsUseCase,
	scanQueue *pkgqueue.RedisQueue,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient, hist, analysis, scan, bars)
	app.ScanQueue = scanQueue
	// attach sample processor to app for closing resources via collector
	if collector != nil {
		app.SampleProc = collector.Processor()
	}
	return app
}
