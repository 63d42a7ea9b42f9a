package repository

import (
	"context"
	"time"

	"OrderFlow/internal/domain/models"
)

// TradeSource is a venue API able to return executed trades for a window.
type TradeSource interface {
	FetchTrades(ctx context.Context, symbol string, sinceMs, untilMs int64, limit int) ([]models.RawTrade, error)
}

// CandleSource is a venue API able to return OHLCV bars for a window.
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol string, tf Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error)
}

// ReportPublisher fans finished reports out to downstream consumers.
// requestID is empty for runs nobody asked for explicitly (scheduled, HTTP).
type ReportPublisher interface {
	PublishReport(ctx context.Context, requestID string, report *models.Report) error
	PublishFailure(ctx context.Context, requestID string, failure *models.FailureReport) error
	PublishAlerts(ctx context.Context, symbol string, alerts []models.DivergenceAlert) error
	Close() error
}

// ReportCache keeps recent reports so repeated requests do not refetch every venue.
// Get returns (nil, nil) on a miss.
type ReportCache interface {
	Get(ctx context.Context, key string) (*models.Report, error)
	Set(ctx context.Context, key string, report *models.Report, ttl time.Duration) error
	// TryLock guards a key across replicas, e.g. one scheduled run per tick.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Metrics interface {
	RecordVenueFetch(venue string, quality models.DataQuality, retries int, seconds float64)
	RecordRun(outcome string, seconds float64)
	RecordDivergences(symbol string, kind models.AlertKind, n int)
	RecordCache(result string)
	RecordError(kind string)
}
