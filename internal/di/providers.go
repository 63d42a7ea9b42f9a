package di

import (
	"fmt"
	"strings"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/internal/handler/api"
	internalrepo "OrderFlow/internal/repository"
	"OrderFlow/internal/service/exchange"
	"OrderFlow/internal/service/ratelimit"
	"OrderFlow/internal/services/venue"
	"OrderFlow/internal/usecase"
	"OrderFlow/pkg/cache"
	"OrderFlow/pkg/config"
	xhttp "OrderFlow/pkg/http"
	pkgkafka "OrderFlow/pkg/kafka"
	"OrderFlow/pkg/logger"
	"OrderFlow/pkg/metrics"
	"OrderFlow/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideFetchers builds one fetcher per enabled venue, in configuration order.
// All venues share one limiter with a bucket per venue ID.
func ProvideFetchers(cfg *config.Config, log *logger.Logger) ([]venue.Fetcher, error) {
	enabled := cfg.EnabledVenues()
	lim := ratelimit.New(ratelimit.Limit{PerSecond: 5, Burst: 5})

	venues := make([]models.Venue, len(enabled))
	for i, vc := range enabled {
		venues[i] = toVenue(vc)
		lim.Configure(vc.ID, ratelimit.Limit{PerSecond: vc.RateLimit.PerSecond, Burst: vc.RateLimit.Burst})
	}

	v := cfg.Engine.Validation
	opts := []venue.Option{
		venue.WithNormalizer(venue.NewNormalizer(venues)),
		venue.WithPolicy(venue.Policy{
			Timeout:    cfg.Engine.AttemptTimeout,
			MaxRetries: cfg.Engine.MaxRetries,
			BaseDelay:  cfg.Engine.RetryBaseDelay,
		}),
		venue.WithRules(venue.Rules{
			MinSamples:          v.MinSamples,
			MaxSideRatio:        v.MaxSideRatio,
			MaxMissingTimestamp: v.MaxMissingTimestamp,
			MaxGap:              v.MaxGap,
		}),
		venue.WithLogger(log),
	}

	fetchers := make([]venue.Fetcher, 0, len(enabled))
	for i, vc := range enabled {
		src := exchange.SourceConfig{ID: vc.ID, BaseURL: vc.BaseURL, Timeout: vc.Timeout, Limiter: lim.For(vc.ID)}
		if venues[i].Level == models.LevelTrade {
			ts, err := exchange.NewTradeSource(src)
			if err != nil {
				return nil, fmt.Errorf("venue %s: %w", vc.ID, err)
			}
			fetchers = append(fetchers, venue.NewTradeLevelVenue(venues[i], ts, opts...))
			continue
		}
		cs, err := exchange.NewCandleSource(src)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", vc.ID, err)
		}
		fetchers = append(fetchers, venue.NewCandleLevelVenue(venues[i], cs, opts...))
	}
	return fetchers, nil
}

func toVenue(vc config.VenueConfig) models.Venue {
	return models.Venue{
		ID:                vc.ID,
		Name:              vc.Name,
		Priority:          vc.Priority,
		ProvidesTakerSide: vc.ProvidesTakerSide,
		Estimator:         models.Estimator(vc.Estimator),
		Level:             models.Level(vc.Level),
		SymbolFormat:      vc.SymbolFormat,
	}
}

// ProvideOrchestrator creates the venue fan-out.
func ProvideOrchestrator(cfg *config.Config, fetchers []venue.Fetcher, m domrepo.Metrics, log *logger.Logger) *usecase.FetchOrchestrator {
	return usecase.NewFetchOrchestrator(fetchers,
		usecase.WithMinVenues(cfg.Engine.MinVenues),
		usecase.WithRunTimeout(cfg.Engine.RunTimeout),
		usecase.WithMaxTrades(cfg.Engine.MaxTrades),
		usecase.WithFetchMetrics(m),
		usecase.WithOrchestratorLogger(log),
	)
}

// ProvideEngine assembles the consensus pipeline.
func ProvideEngine(cfg *config.Config, o *usecase.FetchOrchestrator) *usecase.ConsensusEngine {
	return usecase.NewConsensusEngine(
		o,
		usecase.NewConsensusAggregator(cfg.Engine.DivergenceThreshold),
		usecase.NewCVDTracker(cfg.Engine.HighValueMultiple),
		usecase.NewResultAssembler(),
	)
}

// ProvideCacheService creates the configured cache backend. Backend "none"
// returns a nil service and the report cache is skipped.
func ProvideCacheService(cfg *config.Config) (cache.Service, func(), error) {
	c := cfg.Cache
	switch c.Backend {
	case "none":
		return nil, func() {}, nil
	case "memory":
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(c.MaxSize))
		return mc, func() { _ = mc.Close() }, nil
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisServer(c.Redis.Addr, c.Redis.Password, c.Redis.DB),
			cache.WithRedisPool(c.Redis.PoolSize),
			cache.WithRedisPrefix(c.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		if c.Backend == "redis" {
			return rc, func() { _ = rc.Close() }, nil
		}
		lc := cache.NewLayeredCache(rc,
			cache.WithLayeredMemory(c.MaxSize, c.MemoryTTL),
		)
		return lc, func() { _ = lc.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// ProvideReportCache adapts the cache service to reports.
func ProvideReportCache(svc cache.Service) domrepo.ReportCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewReportCache(svc)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
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

// ProvidePublisher publishes reports to Kafka. When the log digest is on, the
// logger's repeated errors go to the venue health topic through it.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer, log *logger.Logger) (domrepo.ReportPublisher, func()) {
	if producer == nil {
		return nil, func() {}
	}
	t := cfg.Kafka.Topics
	pub := internalrepo.NewKafkaReportPublisher(producer, internalrepo.Topics{
		Snapshots:   t.Snapshots,
		Divergences: t.Divergences,
		VenueHealth: t.VenueHealth,
	})

	if cfg.Log.Digest.Enabled {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Digest.Interval,
			CountThreshold: cfg.Log.Digest.CountThreshold,
			Topic:          t.VenueHealth,
			Publisher:      pub,
			KeyFields:      []string{"venue"},
		})
	}

	return pub, func() {
		log.RemoveCollector()
		if err := pub.Close(); err != nil {
			log.Warn("kafka publisher close", logger.Error(err))
		}
	}
}

// ProvideService creates the orderflow service.
func ProvideService(
	cfg *config.Config,
	engine *usecase.ConsensusEngine,
	rc domrepo.ReportCache,
	pub domrepo.ReportPublisher,
	m domrepo.Metrics,
	log *logger.Logger,
) *usecase.OrderflowService {
	return usecase.NewOrderflowService(engine,
		usecase.WithReportCache(rc, cfg.Cache.TTL),
		usecase.WithPublisher(pub),
		usecase.WithServiceMetrics(m),
		usecase.WithServiceLogger(log),
		usecase.WithMaxLookback(cfg.Engine.MaxLookback),
	)
}

// ProvideScheduler creates the watchlist scheduler, or nil when disabled.
func ProvideScheduler(cfg *config.Config, svc *usecase.OrderflowService, rc domrepo.ReportCache, log *logger.Logger) (*usecase.Scheduler, error) {
	if !cfg.Scheduler.Enabled || len(cfg.Scheduler.Jobs) == 0 {
		return nil, nil
	}
	s := usecase.NewScheduler(svc, rc, cfg.Engine.RunTimeout, log)
	for _, j := range cfg.Scheduler.Jobs {
		err := s.Add(usecase.WatchJob{
			Schedule: j.Schedule,
			Symbol:   strings.ToUpper(j.Symbol),
			Interval: j.Interval,
			Lookback: j.Lookback,
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ProvideConsumer creates the snapshot request consumer, or nil when disabled.
func ProvideConsumer(cfg *config.Config, svc *usecase.OrderflowService, log *logger.Logger) (*pkgkafka.Consumer, error) {
	k := cfg.Kafka
	if !k.Enabled || !k.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(k.Brokers),
		pkgkafka.WithConsumerGroupID(k.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(k.Consumer.Workers),
		pkgkafka.WithConsumerRetry(k.Consumer.RetryMax, k.Consumer.BackoffMin, k.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(k.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewSnapshotHandler(k.Topics.Requests, svc))
	return consumer, nil
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(log *logger.Logger, svc *usecase.OrderflowService) *api.OrderflowEchoHandler {
	return api.NewOrderflowEchoHandler(log, svc)
}

// ProvideHTTPServer creates the Echo server with the inbound rate limiter.
func ProvideHTTPServer(cfg *config.Config, h *api.OrderflowEchoHandler, log *logger.Logger) *xhttp.Server {
	s := cfg.Server
	inbound := ratelimit.New(ratelimit.Limit{PerSecond: s.RateLimit.PerSecond, Burst: s.RateLimit.Burst})
	opts := []xhttp.ServerOption{
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithCORSOrigins(s.CORSOrigins),
		xhttp.WithRateLimiter(inbound),
		xhttp.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	scheduler *usecase.Scheduler,
) *server.App {
	return server.New(log, srv, consumer, scheduler, cfg.Server.ShutdownTimeout)
}
