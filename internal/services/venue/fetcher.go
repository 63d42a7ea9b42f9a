// Package venue turns one venue API into a validated, self-describing FetchResult.
package venue

import (
	"context"
	"errors"
	"time"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/logger"
	"OrderFlow/pkg/retrier"
)

// Request is the window one venue is asked for.
type Request struct {
	Symbol    string
	Timeframe repository.Timeframe
	SinceMs   int64
	UntilMs   int64
	Limit     int
}

// Fetcher performs one venue fetch. Fetch never returns an error: every failure is
// described on the result.
type Fetcher interface {
	Venue() models.Venue
	Fetch(ctx context.Context, req Request) models.FetchResult
}

// Policy bounds the transport side of a fetch.
type Policy struct {
	Timeout    time.Duration // per attempt
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy: 15s per attempt, two retries after 1s and 2s.
func DefaultPolicy() Policy {
	return Policy{Timeout: 15 * time.Second, MaxRetries: 2, BaseDelay: time.Second}
}

// Option configures a fetcher.
type Option func(*base)

func WithPolicy(p Policy) Option {
	return func(b *base) { b.policy = p }
}

func WithRules(r Rules) Option {
	return func(b *base) { b.rules = r }
}

func WithNormalizer(n *Normalizer) Option {
	return func(b *base) { b.normalizer = n }
}

func WithLogger(l *logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithSleep replaces the backoff wait; tests pass a recorder here.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(b *base) { b.sleep = fn }
}

type base struct {
	venue      models.Venue
	normalizer *Normalizer
	policy     Policy
	rules      Rules
	log        *logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func newBase(v models.Venue, opts []Option) base {
	b := base{
		venue:  v,
		policy: DefaultPolicy(),
		rules:  DefaultRules(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.normalizer == nil {
		b.normalizer = NewNormalizer([]models.Venue{v})
	}
	return b
}

func (b *base) Venue() models.Venue { return b.venue }

// nativeSymbol maps the canonical symbol and records a warning when it cannot.
func (b *base) nativeSymbol(canonical string, res *models.FetchResult) string {
	native, ok := b.normalizer.Normalize(canonical, b.venue.ID)
	if !ok {
		w := &models.NormalizationWarning{Symbol: canonical, Venue: b.venue.ID}
		res.Warnings = append(res.Warnings, w.Error())
		b.log.Warn("symbol normalization fallback",
			logger.String("venue", b.venue.ID),
			logger.String("symbol", canonical),
		)
	}
	return native
}

func (b *base) retrier() *retrier.Retrier {
	return retrier.New(
		retrier.WithInitialInterval(b.policy.BaseDelay),
		retrier.WithMultiplier(2),
		retrier.WithMaxRetries(b.policy.MaxRetries),
		retrier.WithRetryIf(isRetryable),
		retrier.WithSleep(b.sleep),
	)
}

// fetchWithRetry runs call under a per-attempt timeout inside the retry loop.
func fetchWithRetry[T any](ctx context.Context, b *base, call func(ctx context.Context) ([]T, error)) ([]T, int, error) {
	return retrier.DoWithData(b.retrier(), ctx, func(ctx context.Context) ([]T, error) {
		actx, cancel := context.WithTimeout(ctx, b.policy.Timeout)
		defer cancel()
		return call(actx)
	})
}

func isRetryable(err error) bool {
	return !errors.Is(err, models.ErrUnsupportedInterval) && !errors.Is(err, context.Canceled)
}

// fail records a transport or unsupported-interval failure.
func (b *base) fail(res *models.FetchResult, err error) {
	res.Success = false
	res.DataQuality = models.QualityError
	if errors.Is(err, models.ErrUnsupportedInterval) {
		res.ErrorKind = models.ErrorKindUnsupported
		res.Error = err.Error()
		b.log.Info("venue skipped",
			logger.String("venue", b.venue.ID),
			logger.String("reason", res.Error),
		)
		return
	}
	terr := &models.TransportError{Venue: b.venue.ID, Retries: res.Retries, Err: err}
	res.ErrorKind = models.ErrorKindTransport
	res.Error = err.Error()
	b.log.Warn("venue fetch failed",
		logger.String("venue", b.venue.ID),
		logger.Int("retries", res.Retries),
		logger.Error(terr),
	)
}

// reject records a validation failure. Rejected data is not retried.
func (b *base) reject(res *models.FetchResult, quality models.DataQuality, reason string) {
	verr := &models.ValidationError{Venue: b.venue.ID, Reason: reason}
	res.Success = false
	res.ErrorKind = models.ErrorKindValidation
	res.DataQuality = quality
	res.Error = reason
	b.log.Warn("venue data rejected",
		logger.String("venue", b.venue.ID),
		logger.String("quality", string(quality)),
		logger.Error(verr),
	)
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
