package di

import (
	"context"
	"fmt"
	"time"

	"PeerBench/internal/domain/models"
	domrepo "PeerBench/internal/domain/repository"
	"PeerBench/internal/handler/api"
	internalrepo "PeerBench/internal/repository"
	seriescache "PeerBench/internal/service/cache"
	"PeerBench/internal/service/fdic"
	"PeerBench/internal/service/ratelimit"
	"PeerBench/internal/service/synthetic"
	"PeerBench/internal/services/analytics"
	"PeerBench/internal/usecase"
	pkgcache "PeerBench/pkg/cache"
	"PeerBench/pkg/config"
	pkgkafka "PeerBench/pkg/kafka"
	applogger "PeerBench/pkg/logger"
	"PeerBench/pkg/metrics"
	"PeerBench/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
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

// ProvideCacheStore returns the in-memory store, layered over Redis when
// redis is enabled. An unreachable Redis degrades to memory only.
func ProvideCacheStore(cfg *config.Config, l *applogger.Logger) pkgcache.Store {
	mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(cfg.Cache.CleanupInterval))
	if !cfg.Cache.Redis.Enabled {
		return mem
	}
	remote, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.KeyPrefix),
	)
	if err != nil {
		l.Warn("redis unavailable, using memory cache only", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		return mem
	}
	l.Info("series cache layered over redis", applogger.String("addr", cfg.Cache.Redis.Addr))
	return pkgcache.NewLayeredCache(mem, remote, cfg.Cache.TTL)
}

// ProvideSeriesCache wires TTLs and the synthetic fallback.
func ProvideSeriesCache(cfg *config.Config, store pkgcache.Store, l *applogger.Logger, m domrepo.Metrics) *seriescache.SeriesCache {
	opts := seriescache.Options{TTL: cfg.Cache.TTL, FallbackTTL: cfg.Fallback.TTL, FetchTimeout: cfg.Query.Timeout}
	if cfg.Fallback.Enabled {
		opts.Fallback = synthetic.New(cfg.Fallback.Seed)
	}
	return seriescache.NewSeriesCache(store, opts, l.With(applogger.String("component", "series_cache")), m)
}

// ProvideInstitutionCache memoises name lookups for certs outside the roster.
func ProvideInstitutionCache(cfg *config.Config, store pkgcache.Store, client *fdic.Client, l *applogger.Logger) *seriescache.InstitutionCache {
	return seriescache.NewInstitutionCache(store, client, cfg.Cache.TTL, l.With(applogger.String("component", "institution_cache")))
}

func ProvideCatalog() *fdic.Catalog {
	return fdic.NewCatalog()
}

func ProvideFDICClient(cfg *config.Config, catalog *fdic.Catalog, l *applogger.Logger, m domrepo.Metrics) *fdic.Client {
	return fdic.NewClient(cfg, catalog, l.With(applogger.String("component", "fdic")), m)
}

func ProvideRoster(cfg *config.Config) *internalrepo.Roster {
	return internalrepo.NewRosterFromConfig(cfg)
}

func ProvideEngine() *analytics.Engine {
	return analytics.NewEngine()
}

// ProvideResultPublisher returns a Kafka publisher when kafka is enabled
// and a no-op otherwise.
func ProvideResultPublisher(cfg *config.Config, rec *metrics.Recorder) (domrepo.ResultPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
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
		pkgkafka.WithObserver(rec.RecordPublish),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideComparisonUseCase assembles the comparison pipeline.
func ProvideComparisonUseCase(
	cfg *config.Config,
	client *fdic.Client,
	names *seriescache.InstitutionCache,
	cache *seriescache.SeriesCache,
	roster *internalrepo.Roster,
	catalog *fdic.Catalog,
	engine *analytics.Engine,
	publisher domrepo.ResultPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) (*usecase.ComparisonUseCase, error) {
	start, err := models.ParseQuarter(cfg.Query.DefaultStart)
	if err != nil {
		return nil, fmt.Errorf("query.default_start: %w", err)
	}
	return usecase.NewComparisonUseCase(client, names, cache, roster, catalog, engine, publisher, m,
		l.With(applogger.String("component", "comparison")),
		usecase.ComparisonOptions{
			Limits:       models.QueryLimits{MaxPeers: cfg.Query.MaxPeers, MaxQuarters: cfg.Query.MaxQuarters},
			Concurrency:  cfg.Query.FetchConcurrency,
			DefaultStart: start,
			Timeout:      cfg.Query.Timeout,
		},
	), nil
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHandler registers the API routes, rate limited when enabled.
func ProvideHandler(cfg *config.Config, l *applogger.Logger, uc *usecase.ComparisonUseCase, limiter *ratelimit.Limiter) *api.ComparisonEchoHandler {
	limit := api.RateLimitConfig{}
	if cfg.RateLimit.Enabled {
		limit = api.RateLimitConfig{Limiter: limiter, Capacity: cfg.RateLimit.Capacity, RefillPerSec: cfg.RateLimit.RefillPerSec}
	}
	return api.NewComparisonEchoHandler(l, uc, limit)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	rec *metrics.Recorder,
	handler *api.ComparisonEchoHandler,
	publisher domrepo.ResultPublisher,
	store pkgcache.Store,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, rec, handler,
		server.WithCloser("result publisher", publisher.Close),
		server.WithCloser("cache store", store.Close),
		server.WithJanitor(time.Minute, func(context.Context) {
			if n := limiter.Forget(10 * time.Minute); n > 0 {
				l.Debug("rate limiter buckets dropped", applogger.Int("count", n))
			}
		}),
	)
}
