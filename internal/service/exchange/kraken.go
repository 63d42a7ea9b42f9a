package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
	pkghttp "OrderFlow/pkg/http"
)

const KrakenBaseURL = "https://api.kraken.com"

var krakenMinutes = map[repository.Timeframe]int{
	repository.TF1m: 1, repository.TF5m: 5, repository.TF15m: 15,
	repository.TF30m: 30, repository.TF1h: 60, repository.TF4h: 240,
	repository.TF1d: 1440,
}

type Kraken struct {
	rest
}

var _ repository.CandleSource = (*Kraken)(nil)

func NewKraken(client *pkghttp.Client, baseURL string) *Kraken {
	return &Kraken{rest: newRest("kraken", baseURL, KrakenBaseURL, client)}
}

type krakenResponse struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

func (k *Kraken) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	minutes, ok := krakenMinutes[tf]
	if !ok {
		return nil, unsupported(k.id, tf)
	}
	q := url.Values{}
	q.Set("pair", symbol)
	q.Set("interval", strconv.Itoa(minutes))
	if sinceMs > 0 {
		q.Set("since", strconv.FormatInt(sinceMs/1000-1, 10))
	}

	var resp krakenResponse
	if err := k.client.Get(ctx, k.baseURL+"/0/public/OHLC", q, &resp); err != nil {
		return nil, errors.Wrapf(err, "kraken OHLC %s", symbol)
	}
	if len(resp.Error) > 0 {
		return nil, errors.Errorf("kraken OHLC %s: %s", symbol, strings.Join(resp.Error, "; "))
	}

	// result holds one pair key (Kraken's own spelling, e.g. XXBTZUSD) plus "last".
	for key, raw := range resp.Result {
		if key == "last" {
			continue
		}
		var rows [][]interface{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, errors.Wrapf(err, "kraken OHLC %s: decode %s", symbol, key)
		}
		// [time, open, high, low, close, vwap, volume, count]
		return parseRows(k.id, rows, ohlcvIdx{ts: 0, open: 1, high: 2, low: 3, close: 4, volume: 6, tsSeconds: true})
	}
	return nil, nil
}
