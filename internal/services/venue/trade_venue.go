package venue

import (
	"context"
	"time"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
)

// TradeLevelVenue fetches executed trades with taker side.
type TradeLevelVenue struct {
	base
	source repository.TradeSource
}

var _ Fetcher = (*TradeLevelVenue)(nil)

func NewTradeLevelVenue(v models.Venue, source repository.TradeSource, opts ...Option) *TradeLevelVenue {
	v.Level = models.LevelTrade
	return &TradeLevelVenue{base: newBase(v, opts), source: source}
}

func (t *TradeLevelVenue) Fetch(ctx context.Context, req Request) models.FetchResult {
	start := time.Now()
	res := models.FetchResult{Venue: t.venue, Level: models.LevelTrade, DataQuality: models.QualityError}
	symbol := t.nativeSymbol(req.Symbol, &res)

	trades, retries, err := fetchWithRetry(ctx, &t.base, func(ctx context.Context) ([]models.RawTrade, error) {
		return t.source.FetchTrades(ctx, symbol, req.SinceMs, req.UntilMs, req.Limit)
	})
	res.Retries = retries
	if err != nil {
		t.fail(&res, err)
		res.ResponseTimeMs = elapsedMs(start)
		return res
	}

	res.Received = len(trades)
	accepted, quality, reason := t.rules.ValidateTrades(trimTrades(trades, req))
	res.ResponseTimeMs = elapsedMs(start)
	if reason != "" {
		t.reject(&res, quality, reason)
		return res
	}
	res.Trades = accepted
	res.Success = true
	res.DataQuality = models.QualityValid
	return res
}

// trimTrades keeps trades inside [since, until]. Trades without a timestamp are kept so
// validation can count them.
func trimTrades(trades []models.RawTrade, req Request) []models.RawTrade {
	out := trades[:0:0]
	for _, tr := range trades {
		if tr.Timestamp == 0 || inWindow(tr.Timestamp, req.SinceMs, req.UntilMs) {
			out = append(out, tr)
		}
	}
	return out
}

func inWindow(ts, since, until int64) bool {
	if since > 0 && ts < since {
		return false
	}
	if until > 0 && ts > until {
		return false
	}
	return true
}
