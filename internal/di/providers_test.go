package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OrderFlow/internal/domain/models"
	"OrderFlow/pkg/config"
	"OrderFlow/pkg/logger"
)

const testConfig = `
engine:
  min_venues: 2
venues:
  - id: binanceus
    priority: 1.0
    level: trade
    provides_taker_side: true
    symbol_format: "{base}{quote}"
  - id: okx
    priority: 0.9
    estimator: direction
  - id: kraken
    priority: 0.8
    enabled: false
cache:
  backend: none
scheduler:
  enabled: true
  jobs:
    - schedule: "0 */5 * * * *"
      symbol: btc-usdt
`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	return cfg
}

func TestProvideFetchers_EnabledVenuesInOrder(t *testing.T) {
	cfg := loadTestConfig(t)

	fetchers, err := ProvideFetchers(cfg, logger.Nop())
	require.NoError(t, err)
	require.Len(t, fetchers, 2)

	assert.Equal(t, "binanceus", fetchers[0].Venue().ID)
	assert.Equal(t, models.LevelTrade, fetchers[0].Venue().Level)
	assert.Equal(t, "okx", fetchers[1].Venue().ID)
	assert.Equal(t, models.EstimatorDirection, fetchers[1].Venue().Estimator)
	assert.Equal(t, models.LevelCandle, fetchers[1].Venue().Level)
}

func TestProvideFetchers_TradeLevelNeedsTradeSource(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Venues[1].Level = "trade"

	_, err := ProvideFetchers(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestProvideCacheService(t *testing.T) {
	cfg := loadTestConfig(t)

	svc, cleanup, err := ProvideCacheService(cfg)
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, svc)
	assert.Nil(t, ProvideReportCache(svc))

	cfg.Cache.Backend = "memory"
	svc, cleanup, err = ProvideCacheService(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, svc)
	assert.NotNil(t, ProvideReportCache(svc))
}

func TestProvideKafka_DisabledYieldsNil(t *testing.T) {
	cfg := loadTestConfig(t)

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)

	pub, cleanup := ProvidePublisher(cfg, producer, logger.Nop())
	cleanup()
	assert.Nil(t, pub)

	consumer, err := ProvideConsumer(cfg, nil, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, consumer)
}

func TestProvideScheduler(t *testing.T) {
	cfg := loadTestConfig(t)

	s, err := ProvideScheduler(cfg, nil, nil, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, s)

	cfg.Scheduler.Jobs[0].Schedule = "not a schedule"
	_, err = ProvideScheduler(cfg, nil, nil, logger.Nop())
	assert.Error(t, err)

	cfg.Scheduler.Enabled = false
	s, err = ProvideScheduler(cfg, nil, nil, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, s)
}
