package exchange

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	pkghttp "OrderFlow/pkg/http"
)

const (
	CoinbaseBaseURL = "https://api.exchange.coinbase.com"
	coinbaseMaxBars = 300
)

var coinbaseGranularity = map[repository.Timeframe]int{
	repository.TF1m: 60, repository.TF5m: 300, repository.TF15m: 900,
	repository.TF1h: 3600, repository.TF6h: 21600, repository.TF1d: 86400,
}

type Coinbase struct {
	rest
}

var _ repository.CandleSource = (*Coinbase)(nil)

func NewCoinbase(client *pkghttp.Client, baseURL string) *Coinbase {
	return &Coinbase{rest: newRest("coinbase", baseURL, CoinbaseBaseURL, client)}
}

func (c *Coinbase) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	granularity, ok := coinbaseGranularity[tf]
	if !ok {
		return nil, unsupported(c.id, tf)
	}
	q := url.Values{}
	q.Set("granularity", strconv.Itoa(granularity))
	if sinceMs > 0 && untilMs > 0 {
		// at most 300 bars per request
		maxSpan := int64(coinbaseMaxBars*granularity) * 1000
		if untilMs-sinceMs > maxSpan {
			sinceMs = untilMs - maxSpan
		}
		q.Set("start", time.UnixMilli(sinceMs).UTC().Format(time.RFC3339))
		q.Set("end", time.UnixMilli(untilMs).UTC().Format(time.RFC3339))
	}

	var rows [][]interface{}
	endpoint := c.baseURL + "/products/" + url.PathEscape(symbol) + "/candles"
	if err := c.client.Get(ctx, endpoint, q, &rows); err != nil {
		return nil, errors.Wrapf(err, "coinbase candles %s", symbol)
	}
	// [time, low, high, open, close, volume]
	return parseRows(c.id, rows, ohlcvIdx{ts: 0, low: 1, high: 2, open: 3, close: 4, volume: 5, tsSeconds: true})
}
