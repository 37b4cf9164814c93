package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"GovTracker/internal/domain/models"
	"GovTracker/internal/domain/repository"
	"GovTracker/internal/handler/api"
	internalrepo "GovTracker/internal/repository"
	"GovTracker/internal/service/eodhd"
	"GovTracker/internal/usecase"
	"GovTracker/pkg/cache"
	pkgch "GovTracker/pkg/clickhouse"
	"GovTracker/pkg/config"
	xhttp "GovTracker/pkg/http"
	"GovTracker/pkg/http/middleware"
	pkgkafka "GovTracker/pkg/kafka"
	applogger "GovTracker/pkg/logger"
	"GovTracker/pkg/metrics"
	"GovTracker/pkg/server"
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideUniverse maps the universe section onto the domain type.
func ProvideUniverse(cfg *config.Config) models.Universe {
	u := cfg.Universe
	return models.Universe{
		Issuers:    append([]string(nil), u.Issuers...),
		Maturities: append([]string(nil), u.Maturities...),
		Defaults: models.UniverseDefaults{
			Issuer:     u.Defaults.Issuer,
			PeerIssuer: u.Defaults.PeerIssuer,
			Maturity:   u.Defaults.Maturity,
		},
	}
}

// ProvideCache returns nil when caching is disabled. With Redis enabled the
// in-process cache sits in front of it.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		l.Info("series cache enabled", applogger.String("backend", "memory"))
		return mem, func() { _ = mem.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		_ = mem.Close()
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(mem, rc, cfg.Cache.TTL)
	l.Info("series cache enabled",
		applogger.String("backend", "memory+redis"),
		applogger.String("redis", fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port)),
	)
	return lc, func() { _ = lc.Close() }, nil
}

// ProvideSeriesCache returns a nil interface when c is nil.
func ProvideSeriesCache(c cache.Service) repository.SeriesCache {
	if c == nil {
		return nil
	}
	return internalrepo.NewSeriesCache(c)
}

// ProvideSnapshotStore creates the read side of the snapshot directory.
func ProvideSnapshotStore(cfg *config.Config, sc repository.SeriesCache, m repository.Metrics, l *applogger.Logger) repository.SnapshotStore {
	opts := []internalrepo.SnapshotStoreOption{
		internalrepo.WithStoreMetrics(m),
		internalrepo.WithStoreLogger(l),
	}
	if sc != nil {
		opts = append(opts, internalrepo.WithSeriesCache(sc, cfg.Cache.TTL))
	}
	return internalrepo.NewParquetSnapshotStore(cfg.Snapshots.Dir, opts...)
}

// ProvideFetchStore creates the write side used by the fetch job.
func ProvideFetchStore(cfg *config.Config, m repository.Metrics, l *applogger.Logger) repository.SnapshotStore {
	return internalrepo.NewParquetSnapshotStore(cfg.Snapshots.Dir,
		internalrepo.WithStoreMetrics(m),
		internalrepo.WithStoreLogger(l),
	)
}

// ProvideHealth reports the snapshot directory as unavailable when it cannot be read.
func ProvideHealth(cfg *config.Config) api.HealthFunc {
	dir := cfg.Snapshots.Dir
	return func(context.Context) error {
		fi, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("snapshot dir: %w", err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("snapshot dir %s is not a directory", dir)
		}
		return nil
	}
}

// ProvideHTTPHandler groups the JSON API and the page.
func ProvideHTTPHandler(l *applogger.Logger, uc *usecase.DashboardUseCase, universe models.Universe, health api.HealthFunc) xhttp.Handler {
	return xhttp.Handlers{
		api.NewDashboardEchoHandler(l, uc, health),
		api.NewPageHandler(l, universe),
	}
}

// ProvideHTTPServer creates the Echo server from the server section.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path, cfg.Server.SlowThreshold),
		xhttp.WithLogger(l),
	}
	if cfg.Server.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(middleware.NewLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideRefreshEventsHandler returns nil when there is no cache to purge.
func ProvideRefreshEventsHandler(cfg *config.Config, sc repository.SeriesCache, m repository.Metrics, l *applogger.Logger) *usecase.RefreshEventsHandler {
	if sc == nil {
		return nil
	}
	return usecase.NewRefreshEventsHandler(cfg.Kafka.Topic, sc, m, l)
}

// ProvideKafkaConsumer returns nil unless Kafka and its consumer are enabled
// and there is a handler to feed.
func ProvideKafkaConsumer(cfg *config.Config, h *usecase.RefreshEventsHandler, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	if h == nil {
		l.Warn("kafka consumer enabled without a series cache; not starting it")
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideApp creates the dashboard application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	h *usecase.RefreshEventsHandler,
) *server.App {
	if consumer == nil || h == nil {
		return server.New(cfg, l, srv, nil, nil)
	}
	return server.New(cfg, l, srv, consumer, h)
}

// ProvideEODSource creates the EODHD client.
func ProvideEODSource(cfg *config.Config, l *applogger.Logger) repository.EODSource {
	return eodhd.New(cfg.EODHD.APIToken,
		eodhd.WithBaseURL(cfg.EODHD.BaseURL),
		eodhd.WithExchange(cfg.EODHD.Exchange),
		eodhd.WithHTTPClient(xhttp.NewClient(
			xhttp.WithTimeout(cfg.EODHD.Timeout),
			xhttp.WithUserAgent("govtracker-fetch"),
		)),
		eodhd.WithLogger(l),
	)
}

// ProvideClickHouseClient returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.YieldSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideYieldMirror returns a nil interface when ch is nil.
func ProvideYieldMirror(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) repository.YieldMirror {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHYieldStore(ch, cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table, l)
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideRefreshPublisher returns a nil interface when p is nil. The producer
// is closed by its own cleanup.
func ProvideRefreshPublisher(cfg *config.Config, p *pkgkafka.Producer) repository.RefreshPublisher {
	if p == nil {
		return nil
	}
	return internalrepo.NewKafkaRefreshPublisher(p, cfg.Kafka.Topic)
}

// ProvideSnapshotRefresher assembles the fetch pipeline.
func ProvideSnapshotRefresher(
	source repository.EODSource,
	store repository.SnapshotStore,
	mirror repository.YieldMirror,
	pub repository.RefreshPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SnapshotRefresher {
	opts := []usecase.RefresherOption{
		usecase.WithRefresherMetrics(m),
		usecase.WithRefresherLogger(l),
	}
	if mirror != nil {
		opts = append(opts, usecase.WithMirror(mirror))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	return usecase.NewSnapshotRefresher(source, store, opts...)
}
