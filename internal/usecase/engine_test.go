package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/internal/services/venue"
)

func newTestEngine(fetchers ...venue.Fetcher) *ConsensusEngine {
	return NewConsensusEngine(
		NewFetchOrchestrator(fetchers, WithClock(fixedNow)),
		NewConsensusAggregator(DefaultDivergenceThreshold),
		NewCVDTracker(DefaultHighValueMultiple),
		NewResultAssembler(WithAssemblerClock(fixedNow)),
	)
}

func TestConsensusEngine_Run(t *testing.T) {
	taker := models.Venue{ID: "binanceus", Name: "Binance US", Priority: 1.0, ProvidesTakerSide: true, Level: models.LevelCandle}
	flat := candleVenue("kraken", 0.8)
	down := candleVenue("gateio", 0.85)

	e := newTestEngine(
		&stubFetcher{v: taker, res: okResult(models.LevelCandle, takerCandles(12, 10, 4))},
		&stubFetcher{v: flat, res: okResult(models.LevelCandle, takerCandles(12, 10, 0))},
		&stubFetcher{v: down, res: failedResult("timeout")},
	)

	rep, err := e.Run(context.Background(), RunParams{Symbol: "BTC-USDT", Timeframe: domrepo.TF1h, Lookback: 12})
	require.NoError(t, err)
	require.Len(t, rep.Footprint, 12)

	// binance delta 4 (w=1.0), kraken flat 0 (w=0.8)
	want := 4 * 1.0 / 1.8
	for i, f := range rep.Footprint {
		assert.InDelta(t, want, f.Delta, 1e-9)
		assert.Equal(t, 2, f.Exchanges)
		assert.InDelta(t, 2.0/3.0, f.Confidence, 1e-9)
		assert.True(t, f.VenueDivergence, "4 vs 0 disagrees")
		assert.InDelta(t, want*float64(i+1), rep.CVD[i].Value, 1e-9)
	}
	assert.Equal(t, 12, rep.Metadata.TotalBuckets)
	assert.Len(t, rep.Metadata.Exchanges, 3)
	assert.Equal(t, []string{"Binance US", "kraken"}, rep.Metadata.ParticipatingVenues)
}

func TestConsensusEngine_QuorumFailure(t *testing.T) {
	e := newTestEngine(
		&stubFetcher{v: candleVenue("a", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 1))},
		&stubFetcher{v: candleVenue("b", 1), res: failedResult("dns")},
	)
	rep, err := e.Run(context.Background(), RunParams{Symbol: "BTC-USDT", Timeframe: domrepo.TF15m})
	assert.Nil(t, rep)
	qe, ok := models.IsQuorumError(err)
	require.True(t, ok)
	assert.Equal(t, 1, qe.Got)
	assert.Len(t, qe.Diagnostics.Exchanges, 2)
}

func TestConsensusEngine_Validation(t *testing.T) {
	e := newTestEngine()
	_, err := e.Run(context.Background(), RunParams{Timeframe: domrepo.TF1h})
	assert.Error(t, err)
	_, err = e.Run(context.Background(), RunParams{Symbol: "BTC", Timeframe: "7m"})
	assert.Error(t, err)
}

func TestResolveLookback(t *testing.T) {
	tests := []struct {
		name     string
		tf       domrepo.Timeframe
		lookback int
		period   string
		want     int
	}{
		{"default", domrepo.TF15m, 0, "", DefaultLookback},
		{"explicit", domrepo.TF1h, 200, "", 200},
		{"too small", domrepo.TF1h, 3, "", MinLookback},
		{"period in bars", domrepo.TF1h, 0, "7d", 168},
		{"period capped", domrepo.TF15m, 0, "1mo", MaxLookback},
		{"week", domrepo.TF1d, 0, "2wk", 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLookback(tt.tf, tt.lookback, tt.period, MaxLookback)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveLookback(domrepo.TF1h, 0, "3q", MaxLookback)
	assert.Error(t, err)
}
