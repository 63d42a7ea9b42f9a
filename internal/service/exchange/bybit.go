package exchange

import (
	"context"
	"strconv"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
)

const bybitMaxBars = 1000

var bybitIntervals = map[repository.Timeframe]bybit.Interval{
	repository.TF1m: "1", repository.TF3m: "3", repository.TF5m: "5",
	repository.TF15m: "15", repository.TF30m: "30", repository.TF1h: "60",
	repository.TF2h: "120", repository.TF4h: "240", repository.TF6h: "360",
	repository.TF12h: "720", repository.TF1d: "D",
}

// Bybit reads spot klines through the V5 market API.
type Bybit struct {
	client *bybit.Client
}

var _ repository.CandleSource = (*Bybit)(nil)

func NewBybit(baseURL string) *Bybit {
	client := bybit.NewClient()
	if baseURL != "" {
		client = client.WithBaseURL(baseURL)
	}
	return &Bybit{client: client}
}

func (b *Bybit) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	interval, ok := bybitIntervals[tf]
	if !ok {
		return nil, unsupported("bybit", tf)
	}
	n := clampLimit(limit, bybitMaxBars)
	param := bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(symbol),
		Interval: interval,
		Limit:    &n,
	}
	if sinceMs > 0 {
		param.Start = &sinceMs
	}
	if untilMs > 0 {
		param.End = &untilMs
	}

	// the SDK call takes no context
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := b.client.V5().Market().GetKline(param)
	if err != nil {
		return nil, errors.Wrapf(err, "bybit kline %s", symbol)
	}
	if resp == nil {
		return nil, errors.Errorf("bybit kline %s: empty response", symbol)
	}
	return convertBybitKlines(resp.Result.List)
}

func convertBybitKlines(list bybit.V5GetKlineList) ([]models.RawCandle, error) {
	out := make([]models.RawCandle, 0, len(list))
	for i, k := range list {
		ts, err := strconv.ParseInt(k.StartTime, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bybit: parse start time at index %d", i)
		}
		var vals [5]float64
		for j, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			if vals[j], err = decimalFloat(s); err != nil {
				return nil, errors.Wrapf(err, "bybit: parse kline at index %d", i)
			}
		}
		out = append(out, models.RawCandle{
			Timestamp: ts,
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
