package models

import "time"

// FootprintRow is one bucket of the consensus footprint.
type FootprintRow struct {
	Time                int64   `json:"time"`
	Delta               float64 `json:"delta"`
	Volume              float64 `json:"volume"`
	Exchanges           int     `json:"exchanges"`
	Confidence          float64 `json:"confidence"`
	Divergence          bool    `json:"divergence"`
	HighValueDivergence bool    `json:"highValueDivergence"`
	VolumeMultiple      float64 `json:"volumeMultiple"`
	VenueDivergence     bool    `json:"venueDivergence"`
	Variance            float64 `json:"variance"`
}

// CVDRow is one point of the cumulative delta series.
type CVDRow struct {
	Time       int64     `json:"time"`
	Value      float64   `json:"value"`
	Delta      float64   `json:"delta"`
	Direction  Direction `json:"direction"`
	Color      string    `json:"color"`
	Confidence float64   `json:"confidence"`
}

// OrderflowRow is one row of the buy/sell split table.
type OrderflowRow struct {
	Time                int64    `json:"time"`
	BuyVol              float64  `json:"buyVol"`
	SellVol             float64  `json:"sellVol"`
	Delta               float64  `json:"delta"`
	Volume              float64  `json:"volume"`
	Exchanges           int      `json:"exchanges"`
	Venues              []string `json:"venues"`
	Confidence          float64  `json:"confidence"`
	Divergence          bool     `json:"divergence"`
	HighValueDivergence bool     `json:"highValueDivergence"`
	VolumeMultiple      float64  `json:"volumeMultiple"`
}

// AlertKind separates cross-venue alerts from CVD/delta alerts.
type AlertKind string

const (
	AlertCrossVenue AlertKind = "cross_venue"
	AlertCVDDelta   AlertKind = "cvd_delta"
)

// DivergenceAlert flags one bucket where sources or signals disagree.
type DivergenceAlert struct {
	Time           int64              `json:"time"`
	Kind           AlertKind          `json:"kind"`
	Type           string             `json:"type,omitempty"`
	Variance       float64            `json:"variance,omitempty"`
	Deltas         map[string]float64 `json:"deltas,omitempty"`
	VolumeMultiple float64            `json:"volumeMultiple,omitempty"`
	CVDDirection   string             `json:"cvdDirection,omitempty"`
	DeltaSign      string             `json:"deltaSign,omitempty"`
}

// ReportMetadata describes how a report was produced.
type ReportMetadata struct {
	RunID               string            `json:"runId"`
	Symbol              string            `json:"symbol"`
	Interval            string            `json:"interval"`
	Lookback            int               `json:"lookback"`
	Period              string            `json:"period,omitempty"`
	SinceMs             int64             `json:"sinceMs"`
	UntilMs             int64             `json:"untilMs"`
	Exchanges           []VenueDiagnostic `json:"exchanges"`
	ParticipatingVenues []string          `json:"participatingVenues"`
	SuccessRate         float64           `json:"successRate"`
	AvgResponseTimeMs   float64           `json:"avgResponseTimeMs"`
	TotalBuckets        int               `json:"totalBuckets"`
	GeneratedAt         time.Time         `json:"generatedAt"`
}

// Report is the engine output for one run.
type Report struct {
	Footprint      []FootprintRow    `json:"footprint"`
	CVD            []CVDRow          `json:"cvd"`
	OrderflowTable []OrderflowRow    `json:"orderflowTable"`
	Divergences    []DivergenceAlert `json:"divergences"`
	Metadata       ReportMetadata    `json:"metadata"`
}

// FailureReport is the output when a run cannot produce a consensus.
type FailureReport struct {
	Error    string `json:"error"`
	Metadata struct {
		Symbol    string            `json:"symbol"`
		Interval  string            `json:"interval"`
		Exchanges []VenueDiagnostic `json:"exchanges"`
	} `json:"metadata"`
}

// NewFailureReport renders a quorum failure with its diagnostics.
func NewFailureReport(symbol, interval string, err error) FailureReport {
	var fr FailureReport
	fr.Error = err.Error()
	fr.Metadata.Symbol = symbol
	fr.Metadata.Interval = interval
	if qe, ok := IsQuorumError(err); ok {
		fr.Metadata.Exchanges = qe.Diagnostics.Exchanges
	}
	return fr
}
