package venue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderFlow/internal/domain/models"
)

const t0 = int64(1_699_920_000_000) // midnight UTC

// makeTrades builds n trades one second apart with alternating sides.
func makeTrades(n int) []models.RawTrade {
	out := make([]models.RawTrade, n)
	for i := range out {
		side := models.SideBuy
		if i%2 == 1 {
			side = models.SideSell
		}
		out[i] = models.RawTrade{Timestamp: t0 + int64(i)*1000, Price: 100, Amount: 1, Side: side}
	}
	return out
}

func makeCandles(n int, intervalMs int64) []models.RawCandle {
	out := make([]models.RawCandle, n)
	for i := range out {
		out[i] = models.RawCandle{
			Timestamp: t0 + int64(i)*intervalMs,
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 10,
		}
	}
	return out
}

func withSides(trades []models.RawTrade, buys int) []models.RawTrade {
	for i := range trades {
		if i < buys {
			trades[i].Side = models.SideBuy
		} else {
			trades[i].Side = models.SideSell
		}
	}
	return trades
}

func TestRules_ValidateTrades(t *testing.T) {
	r := DefaultRules()

	t.Run("empty", func(t *testing.T) {
		_, q, reason := r.ValidateTrades(nil)
		assert.Equal(t, models.QualityEmpty, q)
		assert.NotEmpty(t, reason)
	})

	t.Run("nine trades rejected", func(t *testing.T) {
		_, q, reason := r.ValidateTrades(makeTrades(9))
		assert.Equal(t, models.QualityInvalid, q)
		assert.Contains(t, reason, "insufficient")
	})

	t.Run("ten trades accepted", func(t *testing.T) {
		got, q, reason := r.ValidateTrades(makeTrades(10))
		require.Empty(t, reason)
		assert.Equal(t, models.QualityValid, q)
		assert.Len(t, got, 10)
	})

	t.Run("ratio of exactly ten to one accepted", func(t *testing.T) {
		_, _, reason := r.ValidateTrades(withSides(makeTrades(11), 10))
		assert.Empty(t, reason)
	})

	t.Run("ratio above ten to one rejected", func(t *testing.T) {
		_, q, reason := r.ValidateTrades(withSides(makeTrades(12), 11))
		assert.Equal(t, models.QualityInvalid, q)
		assert.Contains(t, reason, "degenerate")
	})

	t.Run("one-sided rejected", func(t *testing.T) {
		_, _, reason := r.ValidateTrades(withSides(makeTrades(20), 20))
		assert.Contains(t, reason, "one-sided")
	})

	t.Run("missing timestamps within allowance are dropped", func(t *testing.T) {
		trades := makeTrades(10)
		trades[4].Timestamp = 0
		got, q, reason := r.ValidateTrades(trades)
		require.Empty(t, reason)
		assert.Equal(t, models.QualityValid, q)
		assert.Len(t, got, 9)
		for _, tr := range got {
			assert.NotZero(t, tr.Timestamp)
		}
	})

	t.Run("too many missing timestamps rejected", func(t *testing.T) {
		trades := makeTrades(10)
		trades[2].Timestamp = 0
		trades[5].Timestamp = 0
		_, q, reason := r.ValidateTrades(trades)
		assert.Equal(t, models.QualityInvalid, q)
		assert.Contains(t, reason, "timestamp")
	})

	t.Run("gap over one hour rejected", func(t *testing.T) {
		trades := makeTrades(10)
		for i := 5; i < 10; i++ {
			trades[i].Timestamp += time.Hour.Milliseconds() + 1
		}
		_, _, reason := r.ValidateTrades(trades)
		assert.Contains(t, reason, "stale")
	})

	t.Run("unsorted input is sorted", func(t *testing.T) {
		trades := makeTrades(10)
		trades[0], trades[9] = trades[9], trades[0]
		got, _, reason := r.ValidateTrades(trades)
		require.Empty(t, reason)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Timestamp, got[i].Timestamp)
		}
	})
}

func TestRules_ValidateCandles(t *testing.T) {
	r := DefaultRules()
	flat := models.Venue{ID: "okx", Estimator: models.EstimatorFlat}
	hour := time.Hour.Milliseconds()

	t.Run("nine candles rejected", func(t *testing.T) {
		_, q, _ := r.ValidateCandles(flat, makeCandles(9, hour), hour)
		assert.Equal(t, models.QualityInvalid, q)
	})

	t.Run("flat split accepted", func(t *testing.T) {
		got, q, reason := r.ValidateCandles(flat, makeCandles(10, hour), hour)
		require.Empty(t, reason)
		assert.Equal(t, models.QualityValid, q)
		assert.Len(t, got, 10)
	})

	t.Run("four hour bars allow a four hour gap", func(t *testing.T) {
		_, _, reason := r.ValidateCandles(flat, makeCandles(10, 4*hour), 4*hour)
		assert.Empty(t, reason)
	})

	t.Run("missing bar on hourly series rejected", func(t *testing.T) {
		candles := makeCandles(12, hour)
		candles = append(candles[:5], candles[6:]...)
		_, _, reason := r.ValidateCandles(flat, candles, hour)
		assert.Contains(t, reason, "stale")
	})

	t.Run("taker venue with no taker buys rejected", func(t *testing.T) {
		taker := models.Venue{ID: "binanceus", ProvidesTakerSide: true}
		candles := makeCandles(10, hour)
		for i := range candles {
			candles[i].TakerBuyVolume = models.TakerBuy(0)
		}
		_, q, reason := r.ValidateCandles(taker, candles, hour)
		assert.Equal(t, models.QualityInvalid, q)
		assert.Contains(t, reason, "one-sided")
	})

	t.Run("zero volume rejected", func(t *testing.T) {
		candles := makeCandles(10, hour)
		for i := range candles {
			candles[i].Volume = 0
		}
		_, _, reason := r.ValidateCandles(flat, candles, hour)
		assert.NotEmpty(t, reason)
	})
}
