package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
environment: production
engine:
  min_venues: 2
venues:
  - id: binanceus
    name: Binance US
    priority: 1.0
    level: trade
    provides_taker_side: true
    symbol_format: "{base}{quote}"
  - id: okx
    name: OKX
    priority: 0.9
    estimator: direction
  - id: kraken
    priority: 0.8
    enabled: false
scheduler:
  enabled: true
  jobs:
    - schedule: "0 */5 * * * *"
      symbol: BTC-USDT
`

func TestParse_FillsDefaults(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 60*time.Second, c.Engine.RunTimeout)
	assert.Equal(t, 15*time.Second, c.Engine.AttemptTimeout)
	assert.Equal(t, 2, c.Engine.MaxRetries)
	assert.InDelta(t, 0.2, c.Engine.DivergenceThreshold, 1e-12)
	assert.Equal(t, 10, c.Engine.Validation.MinSamples)
	assert.Equal(t, time.Hour, c.Engine.Validation.MaxGap)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, "orderflow.requests", c.Kafka.Topics.Requests)

	require.Len(t, c.Venues, 3)
	assert.Equal(t, "candle", c.Venues[1].Level)
	assert.Equal(t, "{base}-{quote}", c.Venues[1].SymbolFormat)
	assert.Equal(t, "{base}{quote}", c.Venues[0].SymbolFormat)
	assert.Equal(t, 15*time.Second, c.Venues[0].Timeout)

	en := c.EnabledVenues()
	require.Len(t, en, 2)
	assert.Equal(t, "okx", en[1].ID)

	require.Len(t, c.Scheduler.Jobs, 1)
	assert.Equal(t, "15m", c.Scheduler.Jobs[0].Interval)
	assert.Equal(t, 50, c.Scheduler.Jobs[0].Lookback)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate venue": `
venues:
  - {id: okx, priority: 0.9}
  - {id: okx, priority: 0.8}
`,
		"too few enabled": `
engine: {min_venues: 2}
venues:
  - {id: okx, priority: 0.9}
  - {id: kraken, priority: 0.8, enabled: false}
`,
		"priority out of range": `
venues:
  - {id: okx, priority: 1.5}
  - {id: kraken, priority: 0.8}
`,
		"bad level": `
venues:
  - {id: okx, priority: 0.9, level: tick}
  - {id: kraken, priority: 0.8}
`,
		"kafka without brokers": `
kafka: {enabled: true}
venues:
  - {id: okx, priority: 0.9}
  - {id: kraken, priority: 0.8}
`,
		"no venues": `environment: development`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	env := map[string]string{
		"HTTP_PORT":       "9090",
		"KAFKA_BROKERS":   "k1:9092, k2:9092",
		"VENUES_DISABLED": "okx",
		"CACHE_BACKEND":   "redis",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.False(t, c.Venues[1].IsEnabled())
	assert.Error(t, c.Validate(), "only binanceus left enabled")

	env = map[string]string{"HTTP_PORT": "http"}
	assert.Error(t, c.applyEnv(func(k string) string { return env[k] }))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Venues, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
