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

const (
	KuCoinBaseURL = "https://api.kucoin.com"
	kucoinOK      = "200000"
)

var kucoinTypes = map[repository.Timeframe]string{
	repository.TF1m: "1min", repository.TF3m: "3min", repository.TF5m: "5min",
	repository.TF15m: "15min", repository.TF30m: "30min", repository.TF1h: "1hour",
	repository.TF2h: "2hour", repository.TF4h: "4hour", repository.TF6h: "6hour",
	repository.TF12h: "12hour", repository.TF1d: "1day",
}

type KuCoin struct {
	rest
}

var _ repository.CandleSource = (*KuCoin)(nil)

func NewKuCoin(client *pkghttp.Client, baseURL string) *KuCoin {
	return &KuCoin{rest: newRest("kucoin", baseURL, KuCoinBaseURL, client)}
}

type kucoinResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data [][]interface{} `json:"data"`
}

func (k *KuCoin) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	typ, ok := kucoinTypes[tf]
	if !ok {
		return nil, unsupported(k.id, tf)
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", typ)
	if sinceMs > 0 {
		q.Set("startAt", strconv.FormatInt(sinceMs/1000, 10))
	}
	if untilMs > 0 {
		q.Set("endAt", strconv.FormatInt(untilMs/1000, 10))
	}

	var resp kucoinResponse
	if err := k.client.Get(ctx, k.baseURL+"/api/v1/market/candles", q, &resp); err != nil {
		return nil, errors.Wrapf(err, "kucoin candles %s", symbol)
	}
	if resp.Code != kucoinOK {
		return nil, errors.Errorf("kucoin candles %s: code %s: %s", symbol, resp.Code, resp.Msg)
	}
	// [time, open, close, high, low, volume, turnover]
	return parseRows(k.id, resp.Data, ohlcvIdx{ts: 0, open: 1, close: 2, high: 3, low: 4, volume: 5, tsSeconds: true})
}
