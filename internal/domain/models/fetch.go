package models

// DataQuality classifies what a venue returned.
type DataQuality string

const (
	QualityValid   DataQuality = "valid"
	QualityEmpty   DataQuality = "empty"
	QualityInvalid DataQuality = "invalid"
	QualityError   DataQuality = "error"
)

// ErrorKind classifies why a venue failed.
type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindTransport   ErrorKind = "transport"
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindUnsupported ErrorKind = "unsupported"
)

// FetchResult is the outcome of one venue fetch within a run. Exactly one of Trades or
// Candles is populated, according to Level. It is not modified after creation.
type FetchResult struct {
	Venue          Venue
	Level          Level
	Trades         []RawTrade
	Candles        []RawCandle
	Success        bool
	ErrorKind      ErrorKind
	Error          string
	ResponseTimeMs int64
	Retries        int
	DataQuality    DataQuality
	Warnings       []string
	// Received counts what the venue returned before window trimming and validation.
	Received int
}

// Samples returns the number of series entries.
func (r FetchResult) Samples() int {
	if r.Level == LevelTrade {
		return len(r.Trades)
	}
	return len(r.Candles)
}

// Diagnostic converts the result into its reported metadata.
func (r FetchResult) Diagnostic() VenueDiagnostic {
	return VenueDiagnostic{
		Exchange:       r.Venue.DisplayName(),
		ExchangeID:     r.Venue.ID,
		Level:          r.Level,
		Success:        r.Success,
		Samples:        r.Samples(),
		Received:       r.Received,
		Error:          r.Error,
		ErrorKind:      r.ErrorKind,
		ResponseTimeMs: r.ResponseTimeMs,
		Retries:        r.Retries,
		DataQuality:    r.DataQuality,
		Warnings:       r.Warnings,
	}
}

// VenueDiagnostic is the per-venue entry of run metadata.
type VenueDiagnostic struct {
	Exchange       string      `json:"exchange"`
	ExchangeID     string      `json:"exchangeId"`
	Level          Level       `json:"level"`
	Success        bool        `json:"success"`
	Samples        int         `json:"candlesCount"`
	Received       int         `json:"receivedCount"`
	Error          string      `json:"error,omitempty"`
	ErrorKind      ErrorKind   `json:"errorKind,omitempty"`
	ResponseTimeMs int64       `json:"responseTimeMs"`
	Retries        int         `json:"retries"`
	DataQuality    DataQuality `json:"dataQuality"`
	Warnings       []string    `json:"warnings,omitempty"`
}

// RunDiagnostics summarises every attempted venue, failures included.
type RunDiagnostics struct {
	Exchanges         []VenueDiagnostic `json:"exchanges"`
	SuccessRate       float64           `json:"successRate"`
	AvgResponseTimeMs float64           `json:"avgResponseTimeMs"`
}

// Summarize builds diagnostics from a set of results.
func Summarize(results []FetchResult) RunDiagnostics {
	d := RunDiagnostics{Exchanges: make([]VenueDiagnostic, 0, len(results))}
	if len(results) == 0 {
		return d
	}
	var ok int
	var total int64
	for _, r := range results {
		d.Exchanges = append(d.Exchanges, r.Diagnostic())
		if r.Success {
			ok++
		}
		total += r.ResponseTimeMs
	}
	d.SuccessRate = float64(ok) / float64(len(results))
	d.AvgResponseTimeMs = float64(total) / float64(len(results))
	return d
}
