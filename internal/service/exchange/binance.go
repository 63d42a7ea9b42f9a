package exchange

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
)

const (
	BinanceUSBaseURL = "https://api.binance.us"

	aggTradesPage   = 1000
	aggTradesWindow = int64(60*60*1000) - 1 // startTime/endTime must span less than an hour
	binanceMaxBars  = 1000
)

// BinanceUS serves aggregated trades and klines with taker-buy volume.
type BinanceUS struct {
	client *binance.Client
}

var (
	_ repository.TradeSource  = (*BinanceUS)(nil)
	_ repository.CandleSource = (*BinanceUS)(nil)
)

func NewBinanceUS(baseURL string) *BinanceUS {
	client := binance.NewClient("", "")
	if baseURL == "" {
		baseURL = BinanceUSBaseURL
	}
	client.BaseURL = baseURL
	return &BinanceUS{client: client}
}

// FetchTrades walks the window backward from untilMs one hour at a time, paging
// forward inside each hour. With a limit the newest trades are kept.
func (b *BinanceUS) FetchTrades(ctx context.Context, symbol string, sinceMs, untilMs int64, limit int) ([]models.RawTrade, error) {
	var out []models.RawTrade
	for hi := untilMs; hi >= sinceMs; {
		lo := hi - aggTradesWindow
		if lo < sinceMs {
			lo = sinceMs
		}
		chunk, err := b.aggTrades(ctx, symbol, lo, hi)
		if err != nil {
			return nil, err
		}
		out = append(chunk, out...)
		if limit > 0 && len(out) >= limit {
			return out[len(out)-limit:], nil
		}
		hi = lo - 1
	}
	return out, nil
}

// aggTrades returns every trade in [lo, hi], which must span less than an hour.
func (b *BinanceUS) aggTrades(ctx context.Context, symbol string, lo, hi int64) ([]models.RawTrade, error) {
	var out []models.RawTrade
	for cursor := lo; cursor <= hi; {
		page, err := b.client.NewAggTradesService().
			Symbol(symbol).
			StartTime(cursor).
			EndTime(hi).
			Limit(aggTradesPage).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "binanceus aggTrades %s", symbol)
		}

		for _, t := range page {
			price, err := decimalFloat(t.Price)
			if err != nil {
				return nil, errors.Wrapf(err, "binanceus: parse price of trade %d", t.AggTradeID)
			}
			qty, err := decimalFloat(t.Quantity)
			if err != nil {
				return nil, errors.Wrapf(err, "binanceus: parse quantity of trade %d", t.AggTradeID)
			}
			side := models.SideBuy
			if t.IsBuyerMaker {
				side = models.SideSell
			}
			out = append(out, models.RawTrade{Timestamp: t.Timestamp, Price: price, Amount: qty, Side: side})
		}
		if len(page) < aggTradesPage {
			break
		}
		cursor = page[len(page)-1].Timestamp + 1
	}
	return out, nil
}

func (b *BinanceUS) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	if !repository.IsValidTimeframe(tf) {
		return nil, unsupported("binanceus", tf)
	}
	svc := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(tf.String()).
		Limit(clampLimit(limit, binanceMaxBars))
	if sinceMs > 0 {
		svc = svc.StartTime(sinceMs)
	}
	if untilMs > 0 {
		svc = svc.EndTime(untilMs)
	}
	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "binanceus klines %s %s", symbol, tf)
	}

	out := make([]models.RawCandle, 0, len(klines))
	for i, k := range klines {
		var vals [6]float64
		for j, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume, k.TakerBuyBaseAssetVolume} {
			if vals[j], err = decimalFloat(s); err != nil {
				return nil, errors.Wrapf(err, "binanceus: parse kline %d", i)
			}
		}
		out = append(out, models.RawCandle{
			Timestamp:      k.OpenTime,
			Open:           vals[0],
			High:           vals[1],
			Low:            vals[2],
			Close:          vals[3],
			Volume:         vals[4],
			TakerBuyVolume: models.TakerBuy(vals[5]),
		})
	}
	return out, nil
}
