package venue

import (
	"context"
	"time"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/util"
)

// CandleLevelVenue fetches OHLCV bars; buy/sell is split per the venue's estimator.
type CandleLevelVenue struct {
	base
	source repository.CandleSource
}

var _ Fetcher = (*CandleLevelVenue)(nil)

func NewCandleLevelVenue(v models.Venue, source repository.CandleSource, opts ...Option) *CandleLevelVenue {
	v.Level = models.LevelCandle
	return &CandleLevelVenue{base: newBase(v, opts), source: source}
}

func (c *CandleLevelVenue) Fetch(ctx context.Context, req Request) models.FetchResult {
	start := time.Now()
	res := models.FetchResult{Venue: c.venue, Level: models.LevelCandle, DataQuality: models.QualityError}
	symbol := c.nativeSymbol(req.Symbol, &res)

	candles, retries, err := fetchWithRetry(ctx, &c.base, func(ctx context.Context) ([]models.RawCandle, error) {
		return c.source.FetchCandles(ctx, symbol, req.Timeframe, req.SinceMs, req.UntilMs, req.Limit)
	})
	res.Retries = retries
	if err != nil {
		c.fail(&res, err)
		res.ResponseTimeMs = elapsedMs(start)
		return res
	}

	res.Received = len(candles)
	intervalMs := req.Timeframe.Millis()
	accepted, quality, reason := c.rules.ValidateCandles(c.venue, trimCandles(candles, req, intervalMs), intervalMs)
	res.ResponseTimeMs = elapsedMs(start)
	if reason != "" {
		c.reject(&res, quality, reason)
		return res
	}
	if req.Limit > 0 && len(accepted) > req.Limit {
		accepted = accepted[len(accepted)-req.Limit:]
	}
	res.Candles = accepted
	res.Success = true
	res.DataQuality = models.QualityValid
	return res
}

// trimCandles keeps bars whose open time falls in the window. The lower edge is aligned
// down to the bar boundary so the bar containing since is kept.
func trimCandles(candles []models.RawCandle, req Request, intervalMs int64) []models.RawCandle {
	since := req.SinceMs
	if since > 0 {
		since = util.AlignToBucket(since, intervalMs)
	}
	out := candles[:0:0]
	for _, cd := range candles {
		if cd.Timestamp == 0 || inWindow(cd.Timestamp, since, req.UntilMs) {
			out = append(out, cd)
		}
	}
	return out
}
