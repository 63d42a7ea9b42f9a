package usecase

import (
	"OrderFlow/internal/domain/models"
	"OrderFlow/pkg/util"
)

// Bucketize aligns one venue's accepted series onto interval buckets keyed by bucket
// start (ms). Trade volume goes to the aggressor side; candles are split by the venue.
func Bucketize(res models.FetchResult, intervalMs int64) map[int64]models.VenueBucketSample {
	out := make(map[int64]models.VenueBucketSample)
	if intervalMs <= 0 {
		return out
	}

	switch res.Level {
	case models.LevelTrade:
		for _, t := range res.Trades {
			if t.Timestamp <= 0 {
				continue
			}
			b := util.AlignToBucket(t.Timestamp, intervalMs)
			s := out[b]
			if t.Side == models.SideBuy {
				s.Add(t.Amount, 0)
			} else {
				s.Add(0, t.Amount)
			}
			out[b] = s
		}
	default:
		for _, c := range res.Candles {
			if c.Timestamp <= 0 {
				continue
			}
			b := util.AlignToBucket(c.Timestamp, intervalMs)
			buy, sell := res.Venue.SplitCandle(c)
			s := out[b]
			s.Add(buy, sell)
			out[b] = s
		}
	}
	return out
}
