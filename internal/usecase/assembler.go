package usecase

import (
	"time"

	"github.com/google/uuid"

	"OrderFlow/internal/domain/models"
)

// ResultAssembler renders consensus rows and CVD points into the report.
type ResultAssembler struct {
	newID func() string
	now   func() time.Time
}

type AssemblerOption func(*ResultAssembler)

func WithRunIDs(fn func() string) AssemblerOption {
	return func(a *ResultAssembler) { a.newID = fn }
}

func WithAssemblerClock(now func() time.Time) AssemblerOption {
	return func(a *ResultAssembler) { a.now = now }
}

func NewResultAssembler(opts ...AssemblerOption) *ResultAssembler {
	a := &ResultAssembler{
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssembleInput is everything one run produced. Rows and Points are index-aligned.
type AssembleInput struct {
	Symbol   string
	Interval string
	Lookback int
	Period   string
	Outcome  *FetchOutcome
	Rows     []models.ConsensusRow
	Points   []models.CVDPoint
}

func (a *ResultAssembler) Assemble(in AssembleInput) *models.Report {
	n := len(in.Rows)
	rep := &models.Report{
		Footprint:      make([]models.FootprintRow, 0, n),
		CVD:            make([]models.CVDRow, 0, n),
		OrderflowTable: make([]models.OrderflowRow, 0, n),
		Divergences:    []models.DivergenceAlert{},
	}

	for i, row := range in.Rows {
		p := in.Points[i]
		ts := row.Bucket / 1000

		rep.Footprint = append(rep.Footprint, models.FootprintRow{
			Time:                ts,
			Delta:               row.WeightedDelta,
			Volume:              row.TotalVolume,
			Exchanges:           row.VenueCount,
			Confidence:          row.Confidence,
			Divergence:          p.HasDivergence,
			HighValueDivergence: p.HighValueDivergence,
			VolumeMultiple:      p.VolumeMultiple,
			VenueDivergence:     row.Divergence.HasDivergence,
			Variance:            row.Divergence.CoefficientOfVariation,
		})

		color := "red"
		if p.Direction == models.DirectionUp {
			color = "green"
		}
		rep.CVD = append(rep.CVD, models.CVDRow{
			Time:       ts,
			Value:      p.CumulativeDelta,
			Delta:      row.WeightedDelta,
			Direction:  p.Direction,
			Color:      color,
			Confidence: row.Confidence,
		})

		rep.OrderflowTable = append(rep.OrderflowTable, models.OrderflowRow{
			Time:                ts,
			BuyVol:              row.BuyVolume,
			SellVol:             row.SellVolume,
			Delta:               row.WeightedDelta,
			Volume:              row.TotalVolume,
			Exchanges:           row.VenueCount,
			Venues:              row.Venues,
			Confidence:          row.Confidence,
			Divergence:          p.HasDivergence,
			HighValueDivergence: p.HighValueDivergence,
			VolumeMultiple:      p.VolumeMultiple,
		})

		if row.Divergence.HasDivergence {
			rep.Divergences = append(rep.Divergences, models.DivergenceAlert{
				Time:     ts,
				Kind:     models.AlertCrossVenue,
				Variance: row.Divergence.CoefficientOfVariation,
				Deltas:   row.Divergence.Deltas,
			})
		}
		if p.HasDivergence {
			rep.Divergences = append(rep.Divergences, cvdAlert(ts, p))
		}
	}

	rep.Metadata = models.ReportMetadata{
		RunID:        a.newID(),
		Symbol:       in.Symbol,
		Interval:     in.Interval,
		Lookback:     in.Lookback,
		Period:       in.Period,
		TotalBuckets: n,
		GeneratedAt:  a.now().UTC(),
	}
	if o := in.Outcome; o != nil {
		rep.Metadata.SinceMs = o.SinceMs
		rep.Metadata.UntilMs = o.UntilMs
		rep.Metadata.Exchanges = o.Diagnostics.Exchanges
		rep.Metadata.SuccessRate = o.Diagnostics.SuccessRate
		rep.Metadata.AvgResponseTimeMs = o.Diagnostics.AvgResponseTimeMs
		for _, r := range o.Succeeded {
			rep.Metadata.ParticipatingVenues = append(rep.Metadata.ParticipatingVenues, r.Venue.DisplayName())
		}
	}
	return rep
}

func cvdAlert(ts int64, p models.CVDPoint) models.DivergenceAlert {
	alert := models.DivergenceAlert{
		Time:           ts,
		Kind:           models.AlertCVDDelta,
		Type:           "normal",
		VolumeMultiple: p.VolumeMultiple,
		CVDDirection:   "dropping",
		DeltaSign:      "negative",
	}
	if p.HighValueDivergence {
		alert.Type = "high_value"
	}
	if p.Direction == models.DirectionUp {
		alert.CVDDirection = "rising"
	}
	if p.WeightedDelta > 0 {
		alert.DeltaSign = "positive"
	}
	return alert
}
