package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/repository"
	"OrderFlow/internal/services/venue"
	"OrderFlow/pkg/cache"
	pkgkafka "OrderFlow/pkg/kafka"
)

type fakePublisher struct {
	mu       sync.Mutex
	reports  []string
	failures []*models.FailureReport
	alerts   int
	err      error
}

func (p *fakePublisher) PublishReport(_ context.Context, requestID string, _ *models.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, requestID)
	return p.err
}

func (p *fakePublisher) PublishFailure(_ context.Context, _ string, f *models.FailureReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, f)
	return p.err
}

func (p *fakePublisher) PublishAlerts(_ context.Context, _ string, a []models.DivergenceAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts += len(a)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu     sync.Mutex
	runs   []string
	cache  []string
	errors []string
	divs   map[models.AlertKind]int
}

func (m *fakeMetrics) RecordVenueFetch(string, models.DataQuality, int, float64) {}
func (m *fakeMetrics) RecordRun(outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, outcome)
}
func (m *fakeMetrics) RecordDivergences(_ string, kind models.AlertKind, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.divs == nil {
		m.divs = map[models.AlertKind]int{}
	}
	m.divs[kind] += n
}
func (m *fakeMetrics) RecordCache(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = append(m.cache, result)
}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type countingFetcher struct {
	*stubFetcher
	mu    sync.Mutex
	calls int
}

func (c *countingFetcher) Fetch(ctx context.Context, req venue.Request) models.FetchResult {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.stubFetcher.Fetch(ctx, req)
}

func takerVenue(id string) models.Venue {
	v := candleVenue(id, 1)
	v.ProvidesTakerSide = true
	return v
}

func newService(t *testing.T, fetchers []venue.Fetcher, pub *fakePublisher, m *fakeMetrics) *OrderflowService {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewOrderflowService(
		newTestEngine(fetchers...),
		WithReportCache(repository.NewReportCache(mc), time.Minute),
		WithPublisher(pub),
		WithServiceMetrics(m),
	)
}

func TestOrderflowService_CachesReports(t *testing.T) {
	a := &countingFetcher{stubFetcher: &stubFetcher{v: candleVenue("a", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 2))}}
	b := &countingFetcher{stubFetcher: &stubFetcher{v: candleVenue("b", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 2))}}
	pub, m := &fakePublisher{}, &fakeMetrics{}
	svc := newService(t, []venue.Fetcher{a, b}, pub, m)
	ctx := context.Background()

	first, err := svc.Snapshot(ctx, SnapshotParams{Symbol: "btc-usdt", Interval: "1h", Lookback: 10})
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", first.Metadata.Symbol)

	second, err := svc.Snapshot(ctx, SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Lookback: 10})
	require.NoError(t, err)
	assert.Equal(t, first.Metadata.RunID, second.Metadata.RunID)
	assert.Equal(t, 1, a.calls, "second request served from cache")

	_, err = svc.Snapshot(ctx, SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Lookback: 10, Fresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, a.calls)

	assert.Equal(t, []string{"miss", "hit"}, m.cache)
	assert.Equal(t, []string{"ok", "ok"}, m.runs)
	assert.Len(t, pub.reports, 2)
}

func TestOrderflowService_PeriodIsPartOfCacheKey(t *testing.T) {
	a := &countingFetcher{stubFetcher: &stubFetcher{v: candleVenue("a", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 2))}}
	b := &countingFetcher{stubFetcher: &stubFetcher{v: candleVenue("b", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 2))}}
	svc := newService(t, []venue.Fetcher{a, b}, &fakePublisher{}, &fakeMetrics{})
	ctx := context.Background()

	byBars, err := svc.Snapshot(ctx, SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Lookback: 24})
	require.NoError(t, err)
	assert.Empty(t, byBars.Metadata.Period)

	byPeriod, err := svc.Snapshot(ctx, SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Period: "1d"})
	require.NoError(t, err)
	assert.Equal(t, 24, byPeriod.Metadata.Lookback)
	assert.Equal(t, "1d", byPeriod.Metadata.Period)
	assert.NotEqual(t, byBars.Metadata.RunID, byPeriod.Metadata.RunID)
	assert.Equal(t, 2, a.calls)

	assert.Equal(t, "report:BTC-USDT:1h:24", ReportKey("btc-usdt", "1h", 24, ""))
	assert.Equal(t, "report:BTC-USDT:1h:24:1d", ReportKey("BTC-USDT", "1h", 24, "1d"))
}

func TestOrderflowService_QuorumPublishesFailure(t *testing.T) {
	pub, m := &fakePublisher{}, &fakeMetrics{}
	svc := newService(t, []venue.Fetcher{
		&stubFetcher{v: candleVenue("a", 1), res: okResult(models.LevelCandle, takerCandles(10, 10, 2))},
		&stubFetcher{v: candleVenue("b", 1), res: failedResult("dns")},
	}, pub, m)

	rep, err := svc.Snapshot(context.Background(), SnapshotParams{RequestID: "r1", Symbol: "ETH-USDT", Interval: "15m"})
	assert.Nil(t, rep)
	_, ok := models.IsQuorumError(err)
	require.True(t, ok)

	require.Len(t, pub.failures, 1)
	assert.Equal(t, "ETH-USDT", pub.failures[0].Metadata.Symbol)
	assert.Len(t, pub.failures[0].Metadata.Exchanges, 2)
	assert.Empty(t, pub.reports)
	assert.Equal(t, []string{"quorum"}, m.runs)
	assert.Contains(t, m.errors, "quorum")
}

func TestOrderflowService_PublishErrorsDoNotFailRun(t *testing.T) {
	pub, m := &fakePublisher{err: errors.New("broker down")}, &fakeMetrics{}
	svc := newService(t, []venue.Fetcher{
		&stubFetcher{v: takerVenue("a"), res: okResult(models.LevelCandle, takerCandles(10, 10, 5))},
		&stubFetcher{v: takerVenue("b"), res: okResult(models.LevelCandle, takerCandles(10, 10, 1))},
	}, pub, m)

	rep, err := svc.Snapshot(context.Background(), SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Lookback: 10})
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Contains(t, m.errors, "publish_report")
	assert.Equal(t, 10, m.divs[models.AlertCrossVenue], "+5 vs +1 diverges in every bucket")
}

func TestOrderflowService_RejectsBadInput(t *testing.T) {
	svc := newService(t, nil, &fakePublisher{}, &fakeMetrics{})

	_, err := svc.Snapshot(context.Background(), SnapshotParams{Symbol: " "})
	assert.Error(t, err)

	_, err = svc.Snapshot(context.Background(), SnapshotParams{Symbol: "BTC-USDT", Interval: "7m"})
	assert.ErrorContains(t, err, "unsupported interval")

	_, err = svc.Snapshot(context.Background(), SnapshotParams{Symbol: "BTC-USDT", Interval: "1h", Period: "5x"})
	assert.ErrorContains(t, err, "resolve lookback")
}

type recordingSnapshotter struct {
	mu     sync.Mutex
	params []SnapshotParams
	err    error
}

func (r *recordingSnapshotter) Snapshot(_ context.Context, p SnapshotParams) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, p)
	return &models.Report{}, r.err
}

func TestSnapshotHandler_Handle(t *testing.T) {
	rec := &recordingSnapshotter{}
	h := NewSnapshotHandler("orderflow.requests", rec)
	assert.Equal(t, "orderflow.requests", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"requestId":"q1","symbol":"SOL-USDT"}`)))
	require.Len(t, rec.params, 1)
	assert.Equal(t, SnapshotParams{RequestID: "q1", Symbol: "SOL-USDT", Interval: "15m", Lookback: 50, Fresh: true}, rec.params[0])

	err := h.Handle(context.Background(), []byte(`{"symbol":"SOL-USDT","interval":"7m"}`))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)

	err = h.Handle(context.Background(), []byte(`not json`))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)
}

func TestSnapshotHandler_QuorumIsNotRetried(t *testing.T) {
	rec := &recordingSnapshotter{err: &models.QuorumError{Got: 1, Need: 2}}
	h := NewSnapshotHandler("orderflow.requests", rec)
	assert.NoError(t, h.Handle(context.Background(), []byte(`{"symbol":"BTC-USDT"}`)))

	rec.err = errors.New("boom")
	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":"BTC-USDT"}`)))
}

func TestScheduler_RunJobUsesLock(t *testing.T) {
	rec := &recordingSnapshotter{}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	locks := repository.NewReportCache(mc)

	s := NewScheduler(rec, locks, time.Second, nil)
	job := WatchJob{Schedule: "0 */5 * * * *", Symbol: "BTC-USDT", Interval: "15m", Lookback: 50}
	require.NoError(t, s.Add(job))

	s.runJob(job)
	require.Len(t, rec.params, 1)
	assert.True(t, rec.params[0].Fresh)

	// another replica holds the lock
	ok, err := locks.TryLock(context.Background(), "schedule:"+ReportKey("BTC-USDT", "15m", 50, ""), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	s.runJob(job)
	assert.Len(t, rec.params, 1)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&recordingSnapshotter{}, nil, time.Second, nil)
	assert.Error(t, s.Add(WatchJob{Schedule: "every minute", Symbol: "BTC-USDT"}))
	assert.Error(t, s.Add(WatchJob{Schedule: "0 * * * * *"}))

	s.Start()
	assert.NoError(t, s.Stop(context.Background()))
}
