package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/internal/services/venue"
	"OrderFlow/pkg/logger"
)

const (
	DefaultMinVenues  = 2
	DefaultRunTimeout = 60 * time.Second
	DefaultMaxTrades  = 50000
)

// FetchOutcome is what one fan-out produced. Results keep the configured venue order.
type FetchOutcome struct {
	SinceMs     int64
	UntilMs     int64
	Results     []models.FetchResult
	Succeeded   []models.FetchResult
	Diagnostics models.RunDiagnostics
}

// FetchOrchestrator queries every configured venue concurrently and enforces the quorum.
type FetchOrchestrator struct {
	fetchers   []venue.Fetcher
	minVenues  int
	runTimeout time.Duration
	maxTrades  int
	now        func() time.Time
	metrics    domrepo.Metrics
	log        *logger.Logger
}

type OrchestratorOption func(*FetchOrchestrator)

func WithMinVenues(n int) OrchestratorOption {
	return func(o *FetchOrchestrator) {
		if n > 0 {
			o.minVenues = n
		}
	}
}

func WithRunTimeout(d time.Duration) OrchestratorOption {
	return func(o *FetchOrchestrator) {
		if d > 0 {
			o.runTimeout = d
		}
	}
}

// WithMaxTrades caps how many trades a trade-level venue may page through.
func WithMaxTrades(n int) OrchestratorOption {
	return func(o *FetchOrchestrator) {
		if n > 0 {
			o.maxTrades = n
		}
	}
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *FetchOrchestrator) { o.now = now }
}

func WithFetchMetrics(m domrepo.Metrics) OrchestratorOption {
	return func(o *FetchOrchestrator) { o.metrics = m }
}

func WithOrchestratorLogger(l *logger.Logger) OrchestratorOption {
	return func(o *FetchOrchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func NewFetchOrchestrator(fetchers []venue.Fetcher, opts ...OrchestratorOption) *FetchOrchestrator {
	o := &FetchOrchestrator{
		fetchers:   fetchers,
		minVenues:  DefaultMinVenues,
		runTimeout: DefaultRunTimeout,
		maxTrades:  DefaultMaxTrades,
		now:        time.Now,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Venues lists the configured venues in order.
func (o *FetchOrchestrator) Venues() []models.Venue {
	out := make([]models.Venue, len(o.fetchers))
	for i, f := range o.fetchers {
		out[i] = f.Venue()
	}
	return out
}

func (o *FetchOrchestrator) MinVenues() int { return o.minVenues }

// Run fetches [now - interval*lookback, now] from every venue. It returns a
// *models.QuorumError when fewer than MinVenues succeed.
func (o *FetchOrchestrator) Run(ctx context.Context, symbol string, tf domrepo.Timeframe, lookback int) (*FetchOutcome, error) {
	if len(o.fetchers) == 0 {
		return nil, fmt.Errorf("no venues configured")
	}
	untilMs := o.now().UnixMilli()
	sinceMs := untilMs - tf.Millis()*int64(lookback)

	ctx, cancel := context.WithTimeout(ctx, o.runTimeout)
	defer cancel()

	ch := make(chan fetchItem, len(o.fetchers))
	var wg sync.WaitGroup

	for i, f := range o.fetchers {
		req := venue.Request{Symbol: symbol, Timeframe: tf, SinceMs: sinceMs, UntilMs: untilMs, Limit: lookback}
		if f.Venue().Level == models.LevelTrade {
			req.Limit = o.maxTrades
		}
		wg.Add(1)
		go func(idx int, f venue.Fetcher, req venue.Request) {
			defer wg.Done()
			ch <- fetchItem{idx, f.Fetch(ctx, req)}
		}(i, f, req)
	}
	go func() { wg.Wait(); close(ch) }()

	results := make([]models.FetchResult, len(o.fetchers))
	got := make([]bool, len(o.fetchers))
	start := o.now()
collect:
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				break collect
			}
			results[it.idx] = it.res
			got[it.idx] = true
		case <-ctx.Done():
			drain(ch, results, got)
			break collect
		}
	}
	for i, ok := range got {
		if !ok {
			results[i] = timedOut(o.fetchers[i].Venue(), o.now().Sub(start), ctx.Err())
		}
	}

	out := &FetchOutcome{SinceMs: sinceMs, UntilMs: untilMs, Results: results}
	for _, r := range results {
		if o.metrics != nil {
			o.metrics.RecordVenueFetch(r.Venue.ID, r.DataQuality, r.Retries, float64(r.ResponseTimeMs)/1000)
		}
		if r.Success {
			out.Succeeded = append(out.Succeeded, r)
		}
	}
	out.Diagnostics = models.Summarize(results)

	o.log.Info("venue fan-out finished",
		logger.String("symbol", symbol),
		logger.String("interval", tf.String()),
		logger.Int("succeeded", len(out.Succeeded)),
		logger.Int("attempted", len(results)),
	)

	if len(out.Succeeded) < o.minVenues {
		return out, &models.QuorumError{Got: len(out.Succeeded), Need: o.minVenues, Diagnostics: out.Diagnostics}
	}
	return out, nil
}

type fetchItem struct {
	idx int
	res models.FetchResult
}

// drain picks up results already delivered when the run deadline fired.
func drain(ch <-chan fetchItem, results []models.FetchResult, got []bool) {
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				return
			}
			results[it.idx] = it.res
			got[it.idx] = true
		default:
			return
		}
	}
}

func timedOut(v models.Venue, elapsed time.Duration, cause error) models.FetchResult {
	if cause == nil {
		cause = context.DeadlineExceeded
	}
	return models.FetchResult{
		Venue:          v,
		Level:          v.Level,
		ErrorKind:      models.ErrorKindTransport,
		Error:          fmt.Sprintf("run timeout: %v", cause),
		ResponseTimeMs: elapsed.Milliseconds(),
		DataQuality:    models.QualityError,
	}
}
