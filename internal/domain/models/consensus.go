package models

// Direction of the cumulative delta between two consecutive buckets.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// VenueBucketSample is one venue's volume inside one bucket.
type VenueBucketSample struct {
	BuyVolume   float64
	SellVolume  float64
	Delta       float64
	TotalVolume float64
}

// Add accumulates buy and sell volume into the sample.
func (s *VenueBucketSample) Add(buy, sell float64) {
	s.BuyVolume += buy
	s.SellVolume += sell
	s.Delta = s.BuyVolume - s.SellVolume
	s.TotalVolume = s.BuyVolume + s.SellVolume
}

// VenueDivergence describes cross-venue disagreement for a bucket.
type VenueDivergence struct {
	HasDivergence          bool               `json:"hasDivergence"`
	CoefficientOfVariation float64            `json:"variance"`
	Deltas                 map[string]float64 `json:"deltas"`
}

// ConsensusRow is the reconciled view of one bucket. VenueCount is always >= 1.
type ConsensusRow struct {
	Bucket        int64
	WeightedDelta float64
	BuyVolume     float64
	SellVolume    float64
	TotalVolume   float64
	Venues        []string
	VenueCount    int
	Confidence    float64
	Divergence    VenueDivergence
}

// CVDPoint is the cumulative delta after folding one consensus row.
type CVDPoint struct {
	Bucket              int64
	CumulativeDelta     float64
	Direction           Direction
	Confidence          float64
	WeightedDelta       float64
	TotalVolume         float64
	HasDivergence       bool
	HighValueDivergence bool
	VolumeMultiple      float64
}
