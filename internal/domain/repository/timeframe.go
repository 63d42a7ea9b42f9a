package repository

// Timeframe is a bar interval accepted by the engine.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF3m  Timeframe = "3m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF2h  Timeframe = "2h"
	TF4h  Timeframe = "4h"
	TF6h  Timeframe = "6h"
	TF12h Timeframe = "12h"
	TF1d  Timeframe = "1d"
)

var timeframeMillis = map[Timeframe]int64{
	TF1m:  60000,
	TF3m:  180000,
	TF5m:  300000,
	TF15m: 900000,
	TF30m: 1800000,
	TF1h:  3600000,
	TF2h:  7200000,
	TF4h:  14400000,
	TF6h:  21600000,
	TF12h: 43200000,
	TF1d:  86400000,
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframeMillis[tf]
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF15m }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Millis returns the bar width in milliseconds, falling back to the default timeframe.
func (tf Timeframe) Millis() int64 {
	if ms, ok := timeframeMillis[tf]; ok {
		return ms
	}
	return timeframeMillis[DefaultTimeframe()]
}

func (tf Timeframe) String() string { return string(tf) }
