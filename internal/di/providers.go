package di

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"CryptoBooster/internal/domain/repository"
	"CryptoBooster/internal/handler/api"
	mid "CryptoBooster/internal/middleware"
	internalrepo "CryptoBooster/internal/repository"
	"CryptoBooster/internal/service/coingecko"
	"CryptoBooster/internal/service/pricestream"
	"CryptoBooster/internal/service/ratelimit"
	"CryptoBooster/internal/usecase"
	"CryptoBooster/pkg/cache"
	pkgch "CryptoBooster/pkg/clickhouse"
	"CryptoBooster/pkg/config"
	pkghttp "CryptoBooster/pkg/http"
	pkgkafka "CryptoBooster/pkg/kafka"
	applogger "CryptoBooster/pkg/logger"
	"CryptoBooster/pkg/metrics"
	"CryptoBooster/pkg/queue"
	"CryptoBooster/pkg/server"
)

// ProvideLogger creates the application logger with an attached collector so
// recent entries can be served over the logs endpoint.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}

	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	flush := cfg.Logging.FlushInterval
	if flush <= 0 {
		flush = 30 * time.Second
	}
	maxEntries := cfg.Logging.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 100
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   flush,
		CountThreshold: maxEntries,
	})
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive backend is disabled. Schema creation happens in App.Run via
// Archive.Init so failures get logged.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
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
	return client, nil
}

// ProvidePositionArchive creates the ClickHouse position archive.
func ProvidePositionArchive(chClient *pkgch.Client, cfg *config.Config) repository.PositionArchive {
	if chClient == nil {
		return nil
	}
	events := cfg.ClickHouse.EventsTable
	if events == "" {
		events = "position_events"
	}
	state := cfg.ClickHouse.PositionsTable
	if state == "" {
		state = "positions"
	}
	return internalrepo.NewClickHousePositionArchive(chClient.DB(), events, state)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
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

// ProvidePositionPublisher creates the Kafka publisher for position events.
func ProvidePositionPublisher(producer *pkgkafka.Producer, m repository.Metrics, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPositionPublisher(producer, cfg.Kafka.Topic, m)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when Kafka or the archive is disabled.
func ProvideKafkaConsumer(cfg *config.Config, archive repository.PositionArchive) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || archive == nil {
		return nil, nil
	}
	opts := []pkgkafka.ConsumerOption{
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	}
	if v := cfg.Kafka.Consumer.AutoOffsetReset; v != "" {
		opts = append(opts, pkgkafka.WithConsumerAutoOffsetReset(v))
	}
	consumer, err := pkgkafka.NewConsumer(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NoopHook{})
	return consumer, nil
}

// ProvidePositionEventsHandler creates the archive handler for the position
// events topic.
func ProvidePositionEventsHandler(archive repository.PositionArchive, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	if archive == nil {
		return nil
	}
	return usecase.NewPositionEventsHandler(cfg.Kafka.Topic, archive, m)
}

// ProvideRedisCache creates the Redis cache connection, or nil when Redis is
// disabled. The connection is shared by the layered chart cache and the job
// queue.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Redis.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port %q: %w", portStr, err)
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService builds the chart cache: layered memory+Redis when a
// Redis connection exists, memory-only otherwise.
func ProvideCacheService(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(rc)
}

// ProvideMarketDataSource creates the CoinGecko client with its token bucket.
func ProvideMarketDataSource(cfg *config.Config) repository.MarketDataSource {
	timeout := cfg.CoinGecko.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	burst := cfg.CoinGecko.Burst
	if burst <= 0 {
		burst = 5
	}
	refill := cfg.CoinGecko.RefillPerSec
	if refill <= 0 {
		refill = 0.5 // free-tier budget, ~30 calls/min
	}
	httpClient := pkghttp.NewClient(pkghttp.WithTimeout(timeout))
	return coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, httpClient, ratelimit.New(), burst, refill)
}

// ProvideChartSeriesUseCase creates the chart series pipeline.
func ProvideChartSeriesUseCase(market repository.MarketDataSource, cacheSvc cache.Service, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.ChartSeriesUseCase {
	ttl := cfg.Chart.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return usecase.NewChartSeriesUseCase(market, cacheSvc, m, l, ttl)
}

// ProvidePositionStore creates the position store.
func ProvidePositionStore(archive repository.PositionArchive, m repository.Metrics, l *applogger.Logger) *usecase.PositionStore {
	return usecase.NewPositionStore(archive, m, l)
}

// ProvideSignalEditor creates the signal editor.
func ProvideSignalEditor(store *usecase.PositionStore) *usecase.SignalEditor {
	return usecase.NewSignalEditor(store)
}

// ProvideJobQueue creates the Redis-backed chart refresh queue, or nil when
// Redis is disabled. Producer-consumer mode: the app both enqueues refresh
// jobs and works them.
func ProvideJobQueue(rc *cache.RedisCache, charts *usecase.ChartSeriesUseCase, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rc.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewChartRefreshJob(charts, l))
	return q
}

// ProvidePriceStream creates the WebSocket price stream, or nil when
// disabled.
func ProvidePriceStream(cfg *config.Config, l *applogger.Logger) repository.PriceStream {
	if !cfg.PriceStream.Enabled {
		return nil
	}
	return pricestream.New(
		cfg.PriceStream.APIKey,
		cfg.PriceStream.WebSocketURL,
		cfg.PriceStream.Symbols,
		cfg.PriceStream.SymbolMap,
		cfg.PriceStream.ReconnectDelay,
		cfg.PriceStream.PingInterval,
		l,
	)
}

// ProvideTickCollector creates the tick collector with its middleware
// pipeline, or nil when the stream is disabled.
func ProvideTickCollector(stream repository.PriceStream, store *usecase.PositionStore, m repository.Metrics, l *applogger.Logger) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	watcher := usecase.NewPositionWatcher(store, m, l)
	pipe := mid.NewTickPipeline(watcher, m,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, watcher, m, pipe)
}

// ProvideHTTPHandler composes the API handlers.
func ProvideHTTPHandler(
	l *applogger.Logger,
	store *usecase.PositionStore,
	editor *usecase.SignalEditor,
	charts *usecase.ChartSeriesUseCase,
) pkghttp.Handler {
	return pkghttp.Handlers{
		api.NewAnalysisEchoHandler(l),
		api.NewChartsEchoHandler(l, charts),
		api.NewPositionsEchoHandler(l, store, editor),
		api.NewLogsEchoHandler(l),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store *usecase.PositionStore,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	eventsKH pkgkafka.MessageHandler,
	publisher repository.Publisher,
	archive repository.PositionArchive,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	handler pkghttp.Handler,
) *server.App {
	return server.New(cfg, l, store, collector, consumer, eventsKH, publisher, archive, chClient, jobQueue, handler)
}
