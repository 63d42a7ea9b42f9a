package models

// Side of the aggressor in a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// RawTrade is one executed trade as reported by a venue. Timestamp is ms since epoch,
// zero when the venue omitted it.
type RawTrade struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Side      Side    `json:"side"`
}

// RawCandle is one OHLCV bar. TakerBuyVolume is nil when the venue does not report it.
type RawCandle struct {
	Timestamp      int64    `json:"timestamp"`
	Open           float64  `json:"open"`
	High           float64  `json:"high"`
	Low            float64  `json:"low"`
	Close          float64  `json:"close"`
	Volume         float64  `json:"volume"`
	TakerBuyVolume *float64 `json:"takerBuyVolume,omitempty"`
}

// TakerBuy is a helper to build a RawCandle.TakerBuyVolume.
func TakerBuy(v float64) *float64 { return &v }
