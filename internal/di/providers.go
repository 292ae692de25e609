package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	drepo "TipFusion/internal/domain/repository"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/internal/engine"
	"TipFusion/internal/handler/api"
	mid "TipFusion/internal/middleware"
	internalrepo "TipFusion/internal/repository"
	svcmetrics "TipFusion/internal/service/metrics"
	"TipFusion/internal/service/oddsfeed"
	"TipFusion/internal/service/stream"
	"TipFusion/internal/services/availability"
	"TipFusion/internal/services/engines"
	"TipFusion/internal/services/selector"
	"TipFusion/internal/usecase"
	"TipFusion/pkg/cache"
	pkgch "TipFusion/pkg/clickhouse"
	"TipFusion/pkg/config"
	xhttp "TipFusion/pkg/http"
	pkgkafka "TipFusion/pkg/kafka"
	"TipFusion/pkg/logger"
	"TipFusion/pkg/metrics"
	"TipFusion/pkg/queue"
	"TipFusion/pkg/server"
)

const (
	eventHistory   = 20
	slowKafkaMsg   = 500 * time.Millisecond
	modelCacheSize = 256
	modelCacheTTL  = time.Minute
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry every component records into.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svcmetrics.Register(reg)
	pkgkafka.SetMetricsRegisterer(reg)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) drepo.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideClickHouseClient creates a ClickHouse client and its schema. Nil when disabled.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func ProvideDecisionStore(ch *pkgch.Client, cfg *config.Config, l *logger.Logger) drepo.DecisionStore {
	if ch == nil {
		return nil
	}
	s := internalrepo.NewClickHouseDecisionStore(ch, cfg.ClickHouse.Database)
	s.SetLogger(l)
	return s
}

func ProvideBankrollHistory(ch *pkgch.Client, cfg *config.Config) drepo.BankrollHistory {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseBankrollHistory(ch, cfg.ClickHouse.Database)
}

// ProvideBankrollStore opens the SQLite bankroll file. An empty path keeps
// bankrolls in memory only.
func ProvideBankrollStore(cfg *config.Config) (drepo.BankrollStore, error) {
	path := cfg.SQLite.Path
	if path == "" {
		return nil, nil
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	s, err := internalrepo.NewSQLiteBankrollStore(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite bankroll store: %w", err)
	}
	return s, nil
}

// ProvideRedisCache connects to Redis. Nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideModelStatsStore keeps model stats in Redis behind a small memory
// layer, or in process memory without Redis.
func ProvideModelStatsStore(rc *cache.RedisCache) drepo.ModelStatsStore {
	if rc == nil {
		return internalrepo.NewModelStatsCache(cache.NewMemoryCache())
	}
	return internalrepo.NewModelStatsCache(cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(modelCacheSize),
		cache.WithLayeredMemoryTTL(modelCacheTTL),
	))
}

// ProvideKafkaProducer creates a Kafka producer. Nil when disabled. The
// registry parameter orders metric registration before the writer exists.
func ProvideKafkaProducer(cfg *config.Config, _ *prometheus.Registry) (*pkgkafka.Producer, error) {
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

func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.DecisionsTopic, cfg.Kafka.PicksTopic)
}

// ProvideKafkaConsumer creates the odds consumer with a logging hook. Nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger, _ *prometheus.Registry) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewLoggingHook(l, slowKafkaMsg))
	return consumer, nil
}

func ProvideEngineRegistry(cfg *config.Config) *engine.Registry {
	r := engine.NewRegistry()
	engines.RegisterBuiltins(r, cfg.Pipeline.RemoteEngineURL)
	return r
}

func ProvideModelSelector(cfg *config.Config) (*selector.ModelSelector, error) {
	policy, err := selector.ParsePenaltyPolicy(cfg.Selector.PenaltyPolicy)
	if err != nil {
		return nil, err
	}
	return selector.New(
		selector.WithPenaltyPolicy(policy),
		selector.WithLeaguePreferences(cfg.Selector.LeaguePreferences),
	), nil
}

func ProvidePools(cfg *config.Config) *usecase.Pools {
	return usecase.NewPools(cfg.Bankroll.Single, cfg.Bankroll.Kombi, cfg.Bankroll.Live,
		usecase.WithMaxDrawdown(cfg.Bankroll.MaxDrawdown),
		usecase.WithRiskMultiplier(cfg.Bankroll.RiskMultiplier))
}

func ProvideTipSelector(cfg *config.Config) *usecase.TipSelector {
	return usecase.NewTipSelector(usecase.Thresholds{
		MaxSingles:     cfg.Tips.MaxSingles,
		MinValue:       cfg.Tips.MinValue,
		MaxRisk:        cfg.Tips.MaxRisk,
		MinReliability: cfg.Tips.MinReliability,
		RequireTMX:     cfg.RequireTMX(),
		MaxLive:        cfg.Tips.MaxLive,
		MaxProp:        cfg.Tips.MaxProp,
	})
}

// ProvideOrchestrator runs the configured engines, or the built-in batch set
// plus the remote engine when one is configured.
func ProvideOrchestrator(
	cfg *config.Config,
	reg *engine.Registry,
	tips *usecase.TipSelector,
	pools *usecase.Pools,
	sel *selector.ModelSelector,
	m drepo.Metrics,
	l *logger.Logger,
) *usecase.Orchestrator {
	ids := cfg.Pipeline.Engines
	if len(ids) == 0 {
		ids = append([]string(nil), engines.Batch...)
		if cfg.Pipeline.RemoteEngineURL != "" {
			ids = append(ids, engines.RemoteID)
		}
	}
	return usecase.NewOrchestrator(reg, tips, pools,
		usecase.WithEngines(ids),
		usecase.WithEngineConfig(map[string]map[string]any{
			engines.RemoteID: {"timeout": cfg.Pipeline.RemoteTimeout.Seconds()},
		}),
		usecase.WithEngineTimeout(cfg.Pipeline.EngineTimeout),
		usecase.WithWorkers(cfg.Pipeline.Workers),
		usecase.WithRouter(sel),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

func ProvideDecisionService(orch *usecase.Orchestrator, store drepo.DecisionStore, pub drepo.DecisionPublisher, m drepo.Metrics, l *logger.Logger) *usecase.DecisionService {
	return usecase.NewDecisionService(orch, store, pub, m, l)
}

func ProvideBankrollService(pools *usecase.Pools, store drepo.BankrollStore, history drepo.BankrollHistory, m drepo.Metrics, l *logger.Logger) *usecase.BankrollService {
	return usecase.NewBankrollService(pools, store, history, m, l)
}

func ProvideModelCatalog(sel *selector.ModelSelector, store drepo.ModelStatsStore, l *logger.Logger) *usecase.ModelCatalog {
	return usecase.NewModelCatalog(sel, store, l)
}

// ProvideAvailability enables the bookmaker crosscheck when a URL is configured.
func ProvideAvailability(cfg *config.Config) domsvc.AvailabilityChecker {
	if cfg.Availability.URL == "" {
		return nil
	}
	return availability.New(cfg.Availability.URL,
		availability.WithTimeout(cfg.Availability.Timeout),
		availability.WithAttempts(cfg.Availability.Retries),
		availability.WithCacheTTL(cfg.Availability.CacheTTL),
	)
}

func ProvideStrategy(cfg *config.Config, orch *usecase.Orchestrator, checker domsvc.AvailabilityChecker, pub drepo.DecisionPublisher, l *logger.Logger) *usecase.Strategy {
	opts := []usecase.StrategyOption{
		usecase.WithSportWeights(cfg.Strategy.SportWeights),
		usecase.WithLiveFromHour(cfg.Strategy.LiveFromHour),
		usecase.WithStrategyLogger(l),
	}
	if checker != nil {
		opts = append(opts, usecase.WithAvailability(checker))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPicksPublisher(pub))
	}
	return usecase.NewStrategy(orch, opts...)
}

func ProvideEventBook() *usecase.EventBook {
	return usecase.NewEventBook(eventHistory)
}

func ProvideHub(l *logger.Logger) *stream.Hub {
	return stream.NewHub(stream.WithLogger(l))
}

func ProvideLiveProcessor(
	cfg *config.Config,
	orch *usecase.Orchestrator,
	book *usecase.EventBook,
	hub *stream.Hub,
	pub drepo.DecisionPublisher,
	store drepo.DecisionStore,
	m drepo.Metrics,
	l *logger.Logger,
) *usecase.LiveProcessor {
	return usecase.NewLiveProcessor(orch, book, hub, pub, store, m, cfg.Pipeline.LiveStateTTL, l)
}

// ProvideLiveCollector connects the websocket odds feed. Nil when disabled.
func ProvideLiveCollector(cfg *config.Config, proc *usecase.LiveProcessor, m drepo.Metrics, l *logger.Logger) *usecase.LiveCollector {
	if !cfg.Live.Enabled {
		return nil
	}
	feed := oddsfeed.New(cfg.Live.FeedURL, cfg.Live.ReconnectDelay, cfg.Live.PingInterval,
		oddsfeed.WithSports(cfg.Live.Sports),
		oddsfeed.WithBufferSize(cfg.Live.BufferSize),
		oddsfeed.WithLogger(l),
	)
	pipe := mid.NewRealtimePipeline(proc, m,
		mid.WithMaxRPS(cfg.Live.MaxRPS),
		mid.WithBufferSize(cfg.Live.BufferSize),
	)
	return usecase.NewLiveCollector(feed, proc, m, pipe, l)
}

// ProvideKafkaOddsHandler feeds odds updates from Kafka into the live path.
func ProvideKafkaOddsHandler(cfg *config.Config, proc *usecase.LiveProcessor, m drepo.Metrics) *usecase.KafkaOddsHandler {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return usecase.NewKafkaOddsHandler(cfg.Kafka.OddsTopic, proc, m)
}

// ProvideScheduler registers the daily cron jobs. Nil when disabled.
func ProvideScheduler(cfg *config.Config, strategy *usecase.Strategy, book *usecase.EventBook, l *logger.Logger) (*usecase.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}
	s := usecase.NewScheduler(strategy, book, loc, l)
	if err := s.Register(cfg.Scheduler.SinglesCron, cfg.Scheduler.KombiCron, cfg.Scheduler.LiveCron); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideJanitor sweeps the live state and availability caches.
func ProvideJanitor(cfg *config.Config, live *usecase.LiveProcessor, checker domsvc.AvailabilityChecker, l *logger.Logger) (*usecase.Janitor, error) {
	sweepers := map[string]usecase.Sweeper{"live_state": live}
	if s, ok := checker.(usecase.Sweeper); ok {
		sweepers["availability"] = s
	}
	return usecase.NewJanitor(cfg.Pipeline.CacheSweep, sweepers, l)
}

// ProvideSettlementQueue consumes settlements from Redis. Nil when disabled.
func ProvideSettlementQueue(cfg *config.Config, rc *cache.RedisCache, bank *usecase.BankrollService, l *logger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rc == nil {
		return nil
	}
	return queue.NewRedisConsumer(l, &queue.QueueConfig{
		Workers:       cfg.Queue.Workers,
		QueueSize:     cfg.Queue.QueueSize,
		RetryLimit:    cfg.Queue.RetryLimit,
		RetryDelay:    cfg.Queue.RetryDelay,
		MaxRetryDelay: cfg.Queue.MaxDelay,
	}, rc.Client(), []queue.Job{usecase.NewSettlementJob(bank)},
		queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
}

// ProvideLogPublisher ships aggregated error logs to a Redis list when the
// collector is enabled.
func ProvideLogPublisher(cfg *config.Config, rc *cache.RedisCache, l *logger.Logger) *server.LogQueue {
	if !cfg.Logger.Collector.Enabled || rc == nil {
		return nil
	}
	pub := queue.NewRedisPublisher(l, rc.Client(), queue.WithKeyPrefix(cfg.Redis.Prefix+":logs"))
	l.AddCollector(&logger.CollectionConfig{
		TimeInterval:   cfg.Logger.Collector.Interval,
		CountThreshold: cfg.Logger.Collector.CountThreshold,
		Topic:          cfg.Logger.Collector.Topic,
		Publisher:      pub,
	})
	return &server.LogQueue{RedisQueue: pub}
}

// ProvideTipsHandler builds the REST handler with a health check per enabled backend.
func ProvideTipsHandler(
	cfg *config.Config,
	l *logger.Logger,
	decisions *usecase.DecisionService,
	bank *usecase.BankrollService,
	catalog *usecase.ModelCatalog,
	strategy *usecase.Strategy,
	hub *stream.Hub,
	ch *pkgch.Client,
	rc *cache.RedisCache,
	settlements *queue.RedisQueue,
) *api.TipsHandler {
	opts := []api.Option{
		api.WithRateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
		api.WithHub(hub),
	}
	if ch != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", ch.Health))
	}
	if rc != nil {
		opts = append(opts, api.WithHealthCheck("redis", func(ctx context.Context) error {
			return rc.Client().Ping(ctx).Err()
		}))
	}
	if settlements != nil {
		opts = append(opts, api.WithHealthCheck("settlement_queue", func(ctx context.Context) error {
			_, err := settlements.Stats(ctx)
			return err
		}))
	}
	return api.NewTipsHandler(l, decisions, bank, catalog, strategy, opts...)
}

func ProvideHTTPServer(cfg *config.Config, h *api.TipsHandler, reg *prometheus.Registry, l *logger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(l),
		xhttp.WithMetricsRegistry(reg),
	)
}

// ProvideApp assembles the application. The live processor owns the decision
// publisher and store; the remaining closers are closed by the app.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	hub *stream.Hub,
	bank *usecase.BankrollService,
	catalog *usecase.ModelCatalog,
	live *usecase.LiveProcessor,
	collector *usecase.LiveCollector,
	consumer *pkgkafka.Consumer,
	oddsHandler *usecase.KafkaOddsHandler,
	settlements *queue.RedisQueue,
	logPub *server.LogQueue,
	scheduler *usecase.Scheduler,
	janitor *usecase.Janitor,
	bankStore drepo.BankrollStore,
	rc *cache.RedisCache,
	ch *pkgch.Client,
) *server.App {
	var closers []io.Closer
	if bankStore != nil {
		closers = append(closers, bankStore)
	}
	if rc != nil {
		closers = append(closers, rc)
	}
	return server.New(server.Deps{
		Config:       cfg,
		Logger:       l,
		HTTPServer:   srv,
		Hub:          hub,
		Bankroll:     bank,
		Catalog:      catalog,
		Live:         live,
		Collector:    collector,
		Consumer:     consumer,
		OddsHandler:  oddsHandler,
		Settlements:  settlements,
		LogPublisher: logPub,
		Scheduler:    scheduler,
		Janitor:      janitor,
		Closers:      closers,
		CH:           ch,
	})
}
