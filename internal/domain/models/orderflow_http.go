package models

// Requests for the order-flow HTTP endpoints.

type OrderflowRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,min=3,max=24"`
	Interval string `query:"interval" json:"interval" default:"15m" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 12h 1d"`
	Lookback int    `query:"lookback" json:"lookback" default:"50" validate:"gte=10,lte=1000"`
	Period   string `query:"period" json:"period" validate:"omitempty,oneof=1d 3d 7d 1wk 2wk 1mo 3mo 1y"`
	Fresh    bool   `query:"fresh" json:"fresh"`
}

// SnapshotRequest is the payload of a run request consumed from Kafka.
type SnapshotRequest struct {
	RequestID string `json:"requestId"`
	Symbol    string `json:"symbol" validate:"required"`
	Interval  string `json:"interval" default:"15m" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 12h 1d"`
	Lookback  int    `json:"lookback" default:"50" validate:"gte=10,lte=1000"`
	Period    string `json:"period"`
}
