package models

import "strings"

// Level selects which history a venue is asked for.
type Level string

const (
	LevelTrade  Level = "trade"
	LevelCandle Level = "candle"
)

// Estimator names the buy/sell split used for candles without taker-side volume.
type Estimator string

const (
	EstimatorFlat      Estimator = "flat"      // 50/50
	EstimatorDirection Estimator = "direction" // 55/45 toward the candle body
)

// Venue is the static description of one market-data source.
type Venue struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Priority          float64   `json:"priority"`
	ProvidesTakerSide bool      `json:"providesTakerSide"`
	Estimator         Estimator `json:"estimator"`
	Level             Level     `json:"level"`
	SymbolFormat      string    `json:"symbolFormat"`
}

// DisplayName falls back to the ID when no name is configured.
func (v Venue) DisplayName() string {
	if strings.TrimSpace(v.Name) == "" {
		return v.ID
	}
	return v.Name
}

const (
	directionBuyShare = 0.55
	flatBuyShare      = 0.5
)

// SplitCandle returns the buy and sell volume of c for this venue.
// Taker venues use the reported taker-buy volume; the rest use the venue's estimator.
func (v Venue) SplitCandle(c RawCandle) (buy, sell float64) {
	if v.ProvidesTakerSide && c.TakerBuyVolume != nil {
		buy = *c.TakerBuyVolume
		if buy > c.Volume {
			buy = c.Volume
		}
		if buy < 0 {
			buy = 0
		}
		return buy, c.Volume - buy
	}

	share := flatBuyShare
	if v.Estimator == EstimatorDirection {
		if c.Close >= c.Open {
			share = directionBuyShare
		} else {
			share = 1 - directionBuyShare
		}
	}
	buy = c.Volume * share
	return buy, c.Volume - buy
}
