package usecase

import (
	"math"

	"OrderFlow/internal/domain/models"
)

const DefaultHighValueMultiple = 1.5

// CVDTracker folds consensus rows into a cumulative delta series.
type CVDTracker struct {
	highValueMultiple float64
}

func NewCVDTracker(highValueMultiple float64) *CVDTracker {
	if highValueMultiple <= 0 {
		highValueMultiple = DefaultHighValueMultiple
	}
	return &CVDTracker{highValueMultiple: highValueMultiple}
}

// Fold walks rows in order starting from zero. A point is "up" only when the running
// sum strictly increased.
func (t *CVDTracker) Fold(rows []models.ConsensusRow) []models.CVDPoint {
	if len(rows) == 0 {
		return nil
	}
	var totalVol float64
	for _, r := range rows {
		totalVol += r.TotalVolume
	}
	avgVol := totalVol / float64(len(rows))

	out := make([]models.CVDPoint, 0, len(rows))
	var cum float64
	for _, r := range rows {
		prev := cum
		cum += r.WeightedDelta
		dir := models.DirectionDown
		if cum > prev {
			dir = models.DirectionUp
		}

		diverges := (dir == models.DirectionUp && r.WeightedDelta < 0) ||
			(dir == models.DirectionDown && r.WeightedDelta > 0)

		var multiple float64
		if avgVol > 0 {
			multiple = r.TotalVolume / avgVol
		}

		out = append(out, models.CVDPoint{
			Bucket:              r.Bucket,
			CumulativeDelta:     cum,
			Direction:           dir,
			Confidence:          r.Confidence,
			WeightedDelta:       r.WeightedDelta,
			TotalVolume:         r.TotalVolume,
			HasDivergence:       diverges,
			HighValueDivergence: diverges && multiple >= t.highValueMultiple,
			VolumeMultiple:      round2(multiple),
		})
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
