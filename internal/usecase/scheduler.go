package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/logger"
)

// WatchJob is one symbol/interval pair refreshed on a cron schedule.
type WatchJob struct {
	Schedule string
	Symbol   string
	Interval string
	Lookback int
}

// Snapshotter is the piece of OrderflowService the scheduler drives.
type Snapshotter interface {
	Snapshot(ctx context.Context, p SnapshotParams) (*models.Report, error)
}

// Scheduler warms the report cache for a watchlist. With a shared cache the
// lock makes one replica run each tick.
type Scheduler struct {
	cron    *cron.Cron
	svc     Snapshotter
	locks   domrepo.ReportCache
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewScheduler(svc Snapshotter, locks domrepo.ReportCache, timeout time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:     svc,
		locks:   locks,
		log:     log,
		timeout: timeout,
	}
}

// Add registers a job. Schedules use the six-field cron format with seconds.
func (s *Scheduler) Add(job WatchJob) error {
	if job.Symbol == "" {
		return fmt.Errorf("watch job without symbol")
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("schedule %q for %s: %w", job.Schedule, job.Symbol, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.wg.Wait()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runJob(job WatchJob) {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	lockKey := "schedule:" + ReportKey(job.Symbol, job.Interval, job.Lookback, "")
	if s.locks != nil {
		ok, err := s.locks.TryLock(ctx, lockKey, s.timeout)
		if err != nil {
			s.log.Warn("scheduler lock", logger.String("key", lockKey), logger.Error(err))
			return
		}
		if !ok {
			s.log.Debug("scheduled run owned elsewhere", logger.String("symbol", job.Symbol))
			return
		}
		defer func() { _ = s.locks.Unlock(context.Background(), lockKey) }()
	}

	_, err := s.svc.Snapshot(ctx, SnapshotParams{
		Symbol:   job.Symbol,
		Interval: job.Interval,
		Lookback: job.Lookback,
		Fresh:    true,
	})
	if err != nil {
		s.log.Error("scheduled snapshot failed",
			logger.String("symbol", job.Symbol),
			logger.String("interval", job.Interval),
			logger.Error(err),
		)
	}
}
