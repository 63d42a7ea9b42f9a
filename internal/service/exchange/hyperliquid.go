package exchange

import (
	"context"

	"github.com/pkg/errors"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
)

// readOnlyAccount is never used to sign; the info endpoints need no key.
const readOnlyAccount = "0x0000000000000000000000000000000000000000"

var hyperliquidIntervals = map[repository.Timeframe]string{
	repository.TF1m: "1m", repository.TF3m: "3m", repository.TF5m: "5m",
	repository.TF15m: "15m", repository.TF30m: "30m", repository.TF1h: "1h",
	repository.TF2h: "2h", repository.TF4h: "4h", repository.TF12h: "12h",
	repository.TF1d: "1d",
}

// Hyperliquid reads perp candles by coin name ("BTC").
type Hyperliquid struct {
	info *hyperliquid.Info
}

var _ repository.CandleSource = (*Hyperliquid)(nil)

func NewHyperliquid(baseURL string) *Hyperliquid {
	if baseURL == "" {
		baseURL = hyperliquid.MainnetAPIURL
	}
	ex := hyperliquid.NewExchange(context.Background(), nil, baseURL, nil, "", readOnlyAccount, nil)
	return &Hyperliquid{info: ex.Info()}
}

func (h *Hyperliquid) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	interval, ok := hyperliquidIntervals[tf]
	if !ok {
		return nil, unsupported("hyperliquid", tf)
	}
	if untilMs <= 0 {
		return nil, errors.New("hyperliquid: end of window required")
	}
	if sinceMs <= 0 && limit > 0 {
		sinceMs = untilMs - int64(limit+2)*tf.Millis()
	}

	candles, err := h.info.CandlesSnapshot(ctx, symbol, interval, sinceMs, untilMs)
	if err != nil {
		return nil, errors.Wrapf(err, "hyperliquid candles %s", symbol)
	}

	out := make([]models.RawCandle, 0, len(candles))
	for i, c := range candles {
		var vals [5]float64
		for j, s := range []string{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if vals[j], err = decimalFloat(s); err != nil {
				return nil, errors.Wrapf(err, "hyperliquid: parse candle %d", i)
			}
		}
		out = append(out, models.RawCandle{
			Timestamp: c.TimeOpen,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	sortAscending(out)
	return out, nil
}
