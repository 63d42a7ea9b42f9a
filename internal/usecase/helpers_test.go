package usecase

import (
	"context"
	"time"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/services/venue"
)

const (
	t0     = int64(1_699_920_000_000) // midnight UTC
	hourMs = int64(3_600_000)
)

var fixedNow = func() time.Time { return time.UnixMilli(t0 + 24*hourMs) }

type stubFetcher struct {
	v     models.Venue
	res   models.FetchResult
	delay time.Duration
	reqs  chan venue.Request
}

func (s *stubFetcher) Venue() models.Venue { return s.v }

func (s *stubFetcher) Fetch(ctx context.Context, req venue.Request) models.FetchResult {
	if s.reqs != nil {
		s.reqs <- req
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return models.FetchResult{Venue: s.v, Level: s.v.Level, ErrorKind: models.ErrorKindTransport, Error: ctx.Err().Error(), DataQuality: models.QualityError}
		}
	}
	res := s.res
	res.Venue = s.v
	return res
}

func candleVenue(id string, priority float64) models.Venue {
	return models.Venue{ID: id, Name: id, Priority: priority, Estimator: models.EstimatorFlat, Level: models.LevelCandle}
}

// takerCandles builds n hourly candles from t0 whose taker-buy share yields delta per bar.
func takerCandles(n int, volume, delta float64) []models.RawCandle {
	out := make([]models.RawCandle, n)
	for i := range out {
		out[i] = models.RawCandle{
			Timestamp: t0 + int64(i)*hourMs, Open: 100, High: 101, Low: 99, Close: 100,
			Volume: volume, TakerBuyVolume: models.TakerBuy((volume + delta) / 2),
		}
	}
	return out
}

func okResult(level models.Level, candles []models.RawCandle) models.FetchResult {
	return models.FetchResult{Level: level, Candles: candles, Success: true, DataQuality: models.QualityValid, ResponseTimeMs: 100}
}

func failedResult(msg string) models.FetchResult {
	return models.FetchResult{Level: models.LevelCandle, ErrorKind: models.ErrorKindTransport, Error: msg, DataQuality: models.QualityError, Retries: 2, ResponseTimeMs: 300}
}
