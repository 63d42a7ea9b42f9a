package venue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/domain/repository"
)

type fakeTrades struct {
	calls   int
	fails   int // first n calls fail
	err     error
	trades  []models.RawTrade
	symbols []string
}

func (f *fakeTrades) FetchTrades(ctx context.Context, symbol string, sinceMs, untilMs int64, limit int) ([]models.RawTrade, error) {
	f.calls++
	f.symbols = append(f.symbols, symbol)
	if f.calls <= f.fails {
		return nil, f.err
	}
	return f.trades, nil
}

type fakeCandles struct {
	calls   int
	err     error
	candles []models.RawCandle
}

func (f *fakeCandles) FetchCandles(ctx context.Context, symbol string, tf repository.Timeframe, sinceMs, untilMs int64, limit int) ([]models.RawCandle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

func recordSleeps(out *[]time.Duration) Option {
	return WithSleep(func(ctx context.Context, d time.Duration) error {
		*out = append(*out, d)
		return ctx.Err()
	})
}

var binanceVenue = models.Venue{
	ID: "binanceus", Name: "Binance US", Priority: 1.0,
	ProvidesTakerSide: true, SymbolFormat: "{base}USDT",
}

func tradeRequest() Request {
	return Request{Symbol: "BTC-USDT", Timeframe: repository.TF15m, SinceMs: t0, UntilMs: t0 + time.Hour.Milliseconds()}
}

func TestTradeLevelVenue_Fetch(t *testing.T) {
	t.Run("success after two transport failures", func(t *testing.T) {
		var sleeps []time.Duration
		src := &fakeTrades{fails: 2, err: errors.New("connection reset"), trades: makeTrades(20)}
		f := NewTradeLevelVenue(binanceVenue, src, recordSleeps(&sleeps))

		res := f.Fetch(context.Background(), tradeRequest())
		require.True(t, res.Success, res.Error)
		assert.Equal(t, 3, src.calls)
		assert.Equal(t, 2, res.Retries)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
		assert.Equal(t, models.QualityValid, res.DataQuality)
		assert.Len(t, res.Trades, 20)
		assert.Equal(t, "BTCUSDT", src.symbols[0])
	})

	t.Run("transport failure exhausts retries", func(t *testing.T) {
		var sleeps []time.Duration
		src := &fakeTrades{fails: 100, err: errors.New("timeout")}
		f := NewTradeLevelVenue(binanceVenue, src, recordSleeps(&sleeps))

		res := f.Fetch(context.Background(), tradeRequest())
		assert.False(t, res.Success)
		assert.Equal(t, 3, src.calls)
		assert.Equal(t, 2, res.Retries)
		assert.Equal(t, models.ErrorKindTransport, res.ErrorKind)
		assert.Equal(t, models.QualityError, res.DataQuality)
		assert.Equal(t, "timeout", res.Error)
	})

	t.Run("validation failure is not retried", func(t *testing.T) {
		var sleeps []time.Duration
		src := &fakeTrades{trades: makeTrades(9)}
		f := NewTradeLevelVenue(binanceVenue, src, recordSleeps(&sleeps))

		res := f.Fetch(context.Background(), tradeRequest())
		assert.False(t, res.Success)
		assert.Equal(t, 1, src.calls)
		assert.Empty(t, sleeps)
		assert.Equal(t, models.ErrorKindValidation, res.ErrorKind)
		assert.Equal(t, models.QualityInvalid, res.DataQuality)

		d := res.Diagnostic()
		assert.Equal(t, 0, d.Samples)
		assert.Equal(t, 9, d.Received, "diagnostics show what the venue sent")
	})

	t.Run("trades outside the window are dropped", func(t *testing.T) {
		trades := makeTrades(30)
		src := &fakeTrades{trades: trades}
		f := NewTradeLevelVenue(binanceVenue, src)

		req := tradeRequest()
		req.SinceMs = t0 + 10_000
		res := f.Fetch(context.Background(), req)
		require.True(t, res.Success, res.Error)
		assert.Len(t, res.Trades, 20)
		assert.Equal(t, t0+10_000, res.Trades[0].Timestamp)
	})

	t.Run("unmapped symbol is passed through with a warning", func(t *testing.T) {
		src := &fakeTrades{trades: makeTrades(20)}
		f := NewTradeLevelVenue(binanceVenue, src)

		req := tradeRequest()
		req.Symbol = "BTC-EUR"
		res := f.Fetch(context.Background(), req)
		assert.True(t, res.Success)
		assert.Equal(t, "BTC-EUR", src.symbols[0])
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "BTC-EUR")
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &fakeTrades{fails: 100, err: context.Canceled}
		f := NewTradeLevelVenue(binanceVenue, src)

		res := f.Fetch(ctx, tradeRequest())
		assert.False(t, res.Success)
		assert.Equal(t, 1, src.calls)
	})
}

func TestCandleLevelVenue_Fetch(t *testing.T) {
	okx := models.Venue{ID: "okx", Priority: 0.9, Estimator: models.EstimatorDirection, SymbolFormat: "{base}-USDT"}
	hour := time.Hour.Milliseconds()

	t.Run("unsupported interval is not retried", func(t *testing.T) {
		var sleeps []time.Duration
		src := &fakeCandles{err: fmt.Errorf("okx 3m: %w", models.ErrUnsupportedInterval)}
		f := NewCandleLevelVenue(okx, src, recordSleeps(&sleeps))

		res := f.Fetch(context.Background(), Request{Symbol: "BTC-USDT", Timeframe: repository.TF3m})
		assert.False(t, res.Success)
		assert.Equal(t, 1, src.calls)
		assert.Empty(t, sleeps)
		assert.Equal(t, models.ErrorKindUnsupported, res.ErrorKind)
	})

	t.Run("caps to limit keeping newest bars", func(t *testing.T) {
		src := &fakeCandles{candles: makeCandles(30, hour)}
		f := NewCandleLevelVenue(okx, src)

		res := f.Fetch(context.Background(), Request{Symbol: "BTC-USDT", Timeframe: repository.TF1h, Limit: 12})
		require.True(t, res.Success, res.Error)
		require.Len(t, res.Candles, 12)
		assert.Equal(t, t0+29*hour, res.Candles[11].Timestamp)
		assert.Equal(t, 30, res.Received)
		assert.Equal(t, models.LevelCandle, res.Level)
	})

	t.Run("newest-first input is returned ascending", func(t *testing.T) {
		candles := makeCandles(15, hour)
		for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
			candles[i], candles[j] = candles[j], candles[i]
		}
		src := &fakeCandles{candles: candles}
		f := NewCandleLevelVenue(okx, src)

		res := f.Fetch(context.Background(), Request{Symbol: "BTC-USDT", Timeframe: repository.TF1h})
		require.True(t, res.Success, res.Error)
		assert.Equal(t, t0, res.Candles[0].Timestamp)
	})

	t.Run("bar containing since is kept", func(t *testing.T) {
		src := &fakeCandles{candles: makeCandles(20, hour)}
		f := NewCandleLevelVenue(okx, src)

		since := t0 + 5*hour + 10
		res := f.Fetch(context.Background(), Request{Symbol: "BTC-USDT", Timeframe: repository.TF1h, SinceMs: since})
		require.True(t, res.Success, res.Error)
		assert.Len(t, res.Candles, 15)
	})
}
