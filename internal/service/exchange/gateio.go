package exchange

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	pkghttp "OrderFlow/pkg/http"
)

const GateIOBaseURL = "https://api.gateio.ws"

var gateIntervals = map[repository.Timeframe]string{
	repository.TF1m: "1m", repository.TF5m: "5m", repository.TF15m: "15m",
	repository.TF30m: "30m", repository.TF1h: "1h", repository.TF4h: "4h",
	repository.TF1d: "1d",
}

type GateIO struct {
	rest
}

var _ repository.CandleSource = (*GateIO)(nil)

func NewGateIO(client *pkghttp.Client, baseURL string) *GateIO {
	return &GateIO{rest: newRest("gateio", baseURL, GateIOBaseURL, client)}
}

func (g *GateIO) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	interval, ok := gateIntervals[tf]
	if !ok {
		return nil, unsupported(g.id, tf)
	}
	q := url.Values{}
	q.Set("currency_pair", symbol)
	q.Set("interval", interval)
	if sinceMs > 0 && untilMs > 0 {
		q.Set("from", strconv.FormatInt(sinceMs/1000, 10))
		q.Set("to", strconv.FormatInt(untilMs/1000, 10))
	} else {
		q.Set("limit", strconv.Itoa(clampLimit(limit, 1000)))
	}

	var rows [][]interface{}
	if err := g.client.Get(ctx, g.baseURL+"/api/v4/spot/candlesticks", q, &rows); err != nil {
		return nil, errors.Wrapf(err, "gateio candlesticks %s", symbol)
	}
	// [t, quote_volume, close, high, low, open, base_volume, closed]
	return parseRows(g.id, rows, ohlcvIdx{ts: 0, close: 2, high: 3, low: 4, open: 5, volume: 6, tsSeconds: true})
}
