package usecase

import (
	"context"
	"fmt"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/util"
)

const (
	DefaultLookback = 50
	MinLookback     = 10
	MaxLookback     = 1000
)

// RunParams selects the market and window of one run.
type RunParams struct {
	Symbol    string
	Timeframe domrepo.Timeframe
	Lookback  int
	Period    string
}

// ConsensusEngine wires fetch, bucketing, consensus, CVD and assembly for one run.
// It holds no per-run state.
type ConsensusEngine struct {
	orchestrator *FetchOrchestrator
	aggregator   *ConsensusAggregator
	tracker      *CVDTracker
	assembler    *ResultAssembler
}

func NewConsensusEngine(o *FetchOrchestrator, a *ConsensusAggregator, t *CVDTracker, asm *ResultAssembler) *ConsensusEngine {
	return &ConsensusEngine{orchestrator: o, aggregator: a, tracker: t, assembler: asm}
}

func (e *ConsensusEngine) Venues() []models.Venue { return e.orchestrator.Venues() }

// Run returns the report, or a *models.QuorumError carrying every venue's diagnostics.
func (e *ConsensusEngine) Run(ctx context.Context, p RunParams) (*models.Report, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	tf := p.Timeframe
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("unsupported interval %q", tf)
	}
	if p.Lookback <= 0 {
		p.Lookback = DefaultLookback
	}

	outcome, err := e.orchestrator.Run(ctx, p.Symbol, tf, p.Lookback)
	if err != nil {
		return nil, err
	}

	intervalMs := tf.Millis()
	perVenue := make(map[string]map[int64]models.VenueBucketSample, len(outcome.Succeeded))
	for _, r := range outcome.Succeeded {
		perVenue[r.Venue.ID] = Bucketize(r, intervalMs)
	}

	venues := e.orchestrator.Venues()
	rows := e.aggregator.Aggregate(perVenue, venues, len(venues))
	points := e.tracker.Fold(rows)

	return e.assembler.Assemble(AssembleInput{
		Symbol:   p.Symbol,
		Interval: tf.String(),
		Lookback: p.Lookback,
		Period:   p.Period,
		Outcome:  outcome,
		Rows:     rows,
		Points:   points,
	}), nil
}

// ResolveLookback turns either a bar count or a period string into a bar count,
// capped at maxLookback.
func ResolveLookback(tf domrepo.Timeframe, lookback int, period string, maxLookback int) (int, error) {
	if maxLookback <= 0 {
		maxLookback = MaxLookback
	}
	if period != "" {
		ms, err := util.PeriodToMillis(period)
		if err != nil {
			return 0, err
		}
		lookback = int(ms / tf.Millis())
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if lookback < MinLookback {
		lookback = MinLookback
	}
	if lookback > maxLookback {
		lookback = maxLookback
	}
	return lookback, nil
}
