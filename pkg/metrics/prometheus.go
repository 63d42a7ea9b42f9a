package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"OrderFlow/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	venueFetches  *prometheus.CounterVec
	venueLatency  *prometheus.HistogramVec
	venueRetries  *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	runLatency    *prometheus.HistogramVec
	divergences   *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New registers the recorder with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder with reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		venueFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_venue_fetches_total",
				Help: "Venue fetches by resulting data quality",
			},
			[]string{"venue", "quality"},
		),
		venueLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderflow_venue_fetch_duration_seconds",
				Help:    "Wall time of a venue fetch including retries",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
			},
			[]string{"venue"},
		),
		venueRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_venue_retries_total",
				Help: "Retries spent on venue fetches",
			},
			[]string{"venue"},
		),
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_runs_total",
				Help: "Consensus runs by outcome",
			},
			[]string{"outcome"},
		),
		runLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderflow_run_duration_seconds",
				Help:    "Duration of consensus runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		divergences: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_divergence_alerts_total",
				Help: "Divergence alerts emitted",
			},
			[]string{"symbol", "kind"},
		),
		cacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_cache_requests_total",
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

func (r *Recorder) RecordVenueFetch(venue string, quality models.DataQuality, retries int, seconds float64) {
	r.venueFetches.WithLabelValues(venue, string(quality)).Inc()
	r.venueLatency.WithLabelValues(venue).Observe(seconds)
	if retries > 0 {
		r.venueRetries.WithLabelValues(venue).Add(float64(retries))
	}
}

// RecordRun records one consensus run; outcome is ok, quorum or error.
func (r *Recorder) RecordRun(outcome string, seconds float64) {
	r.runsTotal.WithLabelValues(outcome).Inc()
	r.runLatency.WithLabelValues(outcome).Observe(seconds)
}

func (r *Recorder) RecordDivergences(symbol string, kind models.AlertKind, n int) {
	if n <= 0 {
		return
	}
	r.divergences.WithLabelValues(symbol, string(kind)).Add(float64(n))
}

// RecordCache records a cache lookup; result is hit, miss or error.
func (r *Recorder) RecordCache(result string) {
	r.cacheRequests.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
