package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/cache"
	"OrderFlow/pkg/logger"
)

const DefaultCacheTTL = 30 * time.Second

// SnapshotParams is one request for a consensus report.
type SnapshotParams struct {
	RequestID string
	Symbol    string
	Interval  string
	Lookback  int
	Period    string
	// Fresh skips the cache lookup; the result is still cached.
	Fresh bool
}

// OrderflowService sits in front of the engine: it resolves the window, serves
// recent reports from cache and fans results out to Kafka.
type OrderflowService struct {
	engine      *ConsensusEngine
	cache       domrepo.ReportCache
	publisher   domrepo.ReportPublisher
	metrics     domrepo.Metrics
	log         *logger.Logger
	cacheTTL    time.Duration
	maxLookback int
	now         func() time.Time
}

type ServiceOption func(*OrderflowService)

func WithReportCache(c domrepo.ReportCache, ttl time.Duration) ServiceOption {
	return func(s *OrderflowService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithPublisher(p domrepo.ReportPublisher) ServiceOption {
	return func(s *OrderflowService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithServiceMetrics(m domrepo.Metrics) ServiceOption {
	return func(s *OrderflowService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithServiceLogger(l *logger.Logger) ServiceOption {
	return func(s *OrderflowService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMaxLookback(n int) ServiceOption {
	return func(s *OrderflowService) {
		if n > 0 {
			s.maxLookback = n
		}
	}
}

func NewOrderflowService(engine *ConsensusEngine, opts ...ServiceOption) *OrderflowService {
	s := &OrderflowService{
		engine:      engine,
		publisher:   nopPublisher{},
		metrics:     nopMetrics{},
		log:         logger.Nop(),
		cacheTTL:    DefaultCacheTTL,
		maxLookback: MaxLookback,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderflowService) Venues() []models.Venue { return s.engine.Venues() }

// Snapshot returns a report for p. A quorum failure comes back as
// *models.QuorumError and is also published as a failure report.
func (s *OrderflowService) Snapshot(ctx context.Context, p SnapshotParams) (*models.Report, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Interval == "" {
		p.Interval = string(domrepo.DefaultTimeframe())
	}
	tf := domrepo.Timeframe(p.Interval)
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("unsupported interval %q", p.Interval)
	}
	lookback, err := ResolveLookback(tf, p.Lookback, p.Period, s.maxLookback)
	if err != nil {
		return nil, fmt.Errorf("resolve lookback: %w", err)
	}

	key := ReportKey(symbol, tf.String(), lookback, p.Period)
	if !p.Fresh {
		if rep := s.cached(ctx, key); rep != nil {
			return rep, nil
		}
	}

	start := s.now()
	rep, err := s.engine.Run(ctx, RunParams{Symbol: symbol, Timeframe: tf, Lookback: lookback, Period: p.Period})
	elapsed := s.now().Sub(start).Seconds()
	if err != nil {
		if _, ok := models.IsQuorumError(err); ok {
			s.metrics.RecordRun("quorum", elapsed)
			s.metrics.RecordError("quorum")
			fr := models.NewFailureReport(symbol, tf.String(), err)
			if perr := s.publisher.PublishFailure(ctx, p.RequestID, &fr); perr != nil {
				s.log.Warn("publish failure report", logger.String("symbol", symbol), logger.Error(perr))
			}
		} else {
			s.metrics.RecordRun("error", elapsed)
			s.metrics.RecordError("run")
		}
		s.log.Warn("consensus run failed",
			logger.String("symbol", symbol),
			logger.String("interval", tf.String()),
			logger.Error(err),
		)
		return nil, err
	}
	s.metrics.RecordRun("ok", elapsed)
	s.recordDivergences(symbol, rep.Divergences)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rep, s.cacheTTL); err != nil {
			s.metrics.RecordError("cache_set")
			s.log.Warn("cache report", logger.String("key", key), logger.Error(err))
		}
	}
	s.publish(ctx, p.RequestID, rep)

	s.log.Info("consensus run complete",
		logger.String("symbol", symbol),
		logger.String("interval", tf.String()),
		logger.Int("lookback", lookback),
		logger.Int("buckets", rep.Metadata.TotalBuckets),
		logger.Int("divergences", len(rep.Divergences)),
		logger.Float64("seconds", elapsed),
	)
	return rep, nil
}

func (s *OrderflowService) cached(ctx context.Context, key string) *models.Report {
	if s.cache == nil {
		return nil
	}
	rep, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.RecordCache("error")
		s.log.Warn("cache lookup", logger.String("key", key), logger.Error(err))
		return nil
	case rep == nil:
		s.metrics.RecordCache("miss")
		return nil
	default:
		s.metrics.RecordCache("hit")
		return rep
	}
}

// publish failures are logged only; the caller already has its report.
func (s *OrderflowService) publish(ctx context.Context, requestID string, rep *models.Report) {
	if err := s.publisher.PublishReport(ctx, requestID, rep); err != nil {
		s.metrics.RecordError("publish_report")
		s.log.Warn("publish report", logger.String("symbol", rep.Metadata.Symbol), logger.Error(err))
	}
	if err := s.publisher.PublishAlerts(ctx, rep.Metadata.Symbol, rep.Divergences); err != nil {
		s.metrics.RecordError("publish_alerts")
		s.log.Warn("publish alerts", logger.String("symbol", rep.Metadata.Symbol), logger.Error(err))
	}
}

func (s *OrderflowService) recordDivergences(symbol string, alerts []models.DivergenceAlert) {
	counts := map[models.AlertKind]int{}
	for _, a := range alerts {
		counts[a.Kind]++
	}
	for kind, n := range counts {
		s.metrics.RecordDivergences(symbol, kind, n)
	}
}

// ReportKey identifies a cached report by everything that changes its content.
// The period is part of the key because it is echoed in the report metadata.
func ReportKey(symbol, interval string, lookback int, period string) string {
	key := cache.GenerateKeyWithParams("report", strings.ToUpper(symbol), interval, lookback)
	if period != "" {
		key = cache.GenerateKeyWithParams(key, period)
	}
	return key
}

type nopPublisher struct{}

func (nopPublisher) PublishReport(context.Context, string, *models.Report) error        { return nil }
func (nopPublisher) PublishFailure(context.Context, string, *models.FailureReport) error { return nil }
func (nopPublisher) PublishAlerts(context.Context, string, []models.DivergenceAlert) error {
	return nil
}
func (nopPublisher) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordVenueFetch(string, models.DataQuality, int, float64) {}
func (nopMetrics) RecordRun(string, float64)                               {}
func (nopMetrics) RecordDivergences(string, models.AlertKind, int)         {}
func (nopMetrics) RecordCache(string)                                      {}
func (nopMetrics) RecordError(string)                                      {}
