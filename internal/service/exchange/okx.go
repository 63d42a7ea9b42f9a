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
	OKXBaseURL = "https://www.okx.com"
	okxMaxBars = 300
)

var okxBars = map[repository.Timeframe]string{
	repository.TF1m: "1m", repository.TF3m: "3m", repository.TF5m: "5m",
	repository.TF15m: "15m", repository.TF30m: "30m", repository.TF1h: "1H",
	repository.TF2h: "2H", repository.TF4h: "4H", repository.TF6h: "6H",
	repository.TF12h: "12H", repository.TF1d: "1D",
}

// OKX candles carry no taker split.
type OKX struct {
	rest
}

var _ repository.CandleSource = (*OKX)(nil)

func NewOKX(client *pkghttp.Client, baseURL string) *OKX {
	return &OKX{rest: newRest("okx", baseURL, OKXBaseURL, client)}
}

type okxResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data [][]interface{} `json:"data"`
}

func (o *OKX) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	bar, ok := okxBars[tf]
	if !ok {
		return nil, unsupported(o.id, tf)
	}
	q := url.Values{}
	q.Set("instId", symbol)
	q.Set("bar", bar)
	q.Set("limit", strconv.Itoa(clampLimit(limit, okxMaxBars)))
	if untilMs > 0 {
		// "after" returns bars older than the given timestamp.
		q.Set("after", strconv.FormatInt(untilMs+1, 10))
	}

	var resp okxResponse
	if err := o.client.Get(ctx, o.baseURL+"/api/v5/market/candles", q, &resp); err != nil {
		return nil, errors.Wrapf(err, "okx candles %s", symbol)
	}
	if resp.Code != "0" {
		return nil, errors.Errorf("okx candles %s: code %s: %s", symbol, resp.Code, resp.Msg)
	}
	// [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
	return parseRows(o.id, resp.Data, ohlcvIdx{ts: 0, open: 1, high: 2, low: 3, close: 4, volume: 5})
}
