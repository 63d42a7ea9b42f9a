package venue

import (
	"fmt"
	"sort"
	"time"

	"OrderFlow/internal/domain/models"
)

// Rules are the data-quality checks applied after a successful transport call.
type Rules struct {
	MinSamples          int
	MaxSideRatio        float64
	MaxMissingTimestamp float64
	MaxGap              time.Duration
}

// DefaultRules returns the production thresholds.
func DefaultRules() Rules {
	return Rules{
		MinSamples:          10,
		MaxSideRatio:        10,
		MaxMissingTimestamp: 0.10,
		MaxGap:              time.Hour,
	}
}

// ValidateTrades checks trades and returns the accepted series (timestamped, ascending).
// A non-nil reason means the series was rejected with the returned quality.
func (r Rules) ValidateTrades(trades []models.RawTrade) ([]models.RawTrade, models.DataQuality, string) {
	if len(trades) == 0 {
		return nil, models.QualityEmpty, "no trades returned"
	}
	if len(trades) < r.MinSamples {
		return nil, models.QualityInvalid, fmt.Sprintf("insufficient trades: %d < %d", len(trades), r.MinSamples)
	}

	var buys, sells float64
	kept := make([]models.RawTrade, 0, len(trades))
	for _, t := range trades {
		switch t.Side {
		case models.SideBuy:
			buys++
		case models.SideSell:
			sells++
		}
		if t.Timestamp > 0 {
			kept = append(kept, t)
		}
	}
	if reason := r.checkMissing(len(trades), len(trades)-len(kept)); reason != "" {
		return nil, models.QualityInvalid, reason
	}
	if reason := r.checkSides("trades", buys, sells); reason != "" {
		return nil, models.QualityInvalid, reason
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp < kept[j].Timestamp })
	ts := make([]int64, len(kept))
	for i, t := range kept {
		ts[i] = t.Timestamp
	}
	if reason := checkGap(ts, r.MaxGap.Milliseconds()); reason != "" {
		return nil, models.QualityInvalid, reason
	}
	return kept, models.QualityValid, ""
}

// ValidateCandles checks candles for venue v. Buy/sell balance is measured on split volume.
// For bars longer than the gap limit, one bar width is allowed between candles.
func (r Rules) ValidateCandles(v models.Venue, candles []models.RawCandle, intervalMs int64) ([]models.RawCandle, models.DataQuality, string) {
	if len(candles) == 0 {
		return nil, models.QualityEmpty, "no candles returned"
	}
	if len(candles) < r.MinSamples {
		return nil, models.QualityInvalid, fmt.Sprintf("insufficient candles: %d < %d", len(candles), r.MinSamples)
	}

	var buyVol, sellVol float64
	kept := make([]models.RawCandle, 0, len(candles))
	for _, c := range candles {
		buy, sell := v.SplitCandle(c)
		buyVol += buy
		sellVol += sell
		if c.Timestamp > 0 {
			kept = append(kept, c)
		}
	}
	if reason := r.checkMissing(len(candles), len(candles)-len(kept)); reason != "" {
		return nil, models.QualityInvalid, reason
	}
	if reason := r.checkSides("volume", buyVol, sellVol); reason != "" {
		return nil, models.QualityInvalid, reason
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp < kept[j].Timestamp })
	ts := make([]int64, len(kept))
	for i, c := range kept {
		ts[i] = c.Timestamp
	}
	limit := r.MaxGap.Milliseconds()
	if intervalMs > limit {
		limit = intervalMs
	}
	if reason := checkGap(ts, limit); reason != "" {
		return nil, models.QualityInvalid, reason
	}
	return kept, models.QualityValid, ""
}

func (r Rules) checkMissing(total, missing int) string {
	if total == 0 {
		return ""
	}
	if float64(missing)/float64(total) > r.MaxMissingTimestamp {
		return fmt.Sprintf("too many samples without timestamp: %d of %d", missing, total)
	}
	return ""
}

func (r Rules) checkSides(what string, buy, sell float64) string {
	if buy <= 0 || sell <= 0 {
		return fmt.Sprintf("one-sided %s: buy=%g sell=%g", what, buy, sell)
	}
	major, minor := buy, sell
	if sell > buy {
		major, minor = sell, buy
	}
	if major/minor > r.MaxSideRatio {
		return fmt.Sprintf("degenerate %s split %.1f:1 exceeds %.0f:1", what, major/minor, r.MaxSideRatio)
	}
	return ""
}

// checkGap expects ts sorted ascending.
func checkGap(ts []int64, limitMs int64) string {
	if limitMs <= 0 {
		return ""
	}
	var maxGap int64
	for i := 1; i < len(ts); i++ {
		if g := ts[i] - ts[i-1]; g > maxGap {
			maxGap = g
		}
	}
	if maxGap > limitMs {
		return fmt.Sprintf("stale feed: gap of %s between samples", time.Duration(maxGap)*time.Millisecond)
	}
	return ""
}
