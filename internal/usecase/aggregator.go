package usecase

import (
	"math"
	"sort"

	"OrderFlow/internal/domain/models"
)

const DefaultDivergenceThreshold = 0.20

// ConsensusAggregator merges per-venue buckets into one priority-weighted row per bucket.
type ConsensusAggregator struct {
	threshold float64
}

func NewConsensusAggregator(threshold float64) *ConsensusAggregator {
	if threshold <= 0 {
		threshold = DefaultDivergenceThreshold
	}
	return &ConsensusAggregator{threshold: threshold}
}

// Aggregate builds rows in ascending bucket order. venues supplies priorities and the
// iteration order; totalVenues is the confidence denominator.
func (a *ConsensusAggregator) Aggregate(perVenue map[string]map[int64]models.VenueBucketSample, venues []models.Venue, totalVenues int) []models.ConsensusRow {
	buckets := make(map[int64]struct{})
	for _, series := range perVenue {
		for b := range series {
			buckets[b] = struct{}{}
		}
	}
	keys := make([]int64, 0, len(buckets))
	for b := range buckets {
		keys = append(keys, b)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]models.ConsensusRow, 0, len(keys))
	for _, b := range keys {
		var (
			weighted, weights float64
			row               = models.ConsensusRow{Bucket: b}
			deltas            []float64
			byName            = make(map[string]float64)
		)
		for _, v := range venues {
			s, ok := perVenue[v.ID][b]
			if !ok {
				continue
			}
			weighted += s.Delta * v.Priority
			weights += v.Priority
			row.BuyVolume += s.BuyVolume
			row.SellVolume += s.SellVolume
			row.TotalVolume += s.TotalVolume
			row.Venues = append(row.Venues, v.DisplayName())
			deltas = append(deltas, s.Delta)
			byName[v.DisplayName()] = s.Delta
		}
		row.VenueCount = len(deltas)
		if row.VenueCount == 0 {
			continue
		}
		if weights > 0 {
			row.WeightedDelta = weighted / weights
		}
		row.Confidence = confidence(row.VenueCount, totalVenues)
		row.Divergence = models.VenueDivergence{Deltas: byName}
		if row.VenueCount >= 2 {
			cv := CoefficientOfVariation(deltas)
			row.Divergence.CoefficientOfVariation = cv
			row.Divergence.HasDivergence = cv > a.threshold
		}
		rows = append(rows, row)
	}
	return rows
}

func confidence(count, total int) float64 {
	if total <= 0 {
		return 1
	}
	return math.Min(1, float64(count)/float64(total))
}

// CoefficientOfVariation is the sample standard deviation over |mean|; 0 for a zero mean
// or fewer than two values.
func CoefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	stdev := math.Sqrt(ss / float64(len(xs)-1))
	return stdev / math.Abs(mean)
}
