package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisConfig_ZeroValuesKeepDefaults(t *testing.T) {
	cfg := newRedisConfig(
		WithRedisServer("", "", 0),
		WithRedisPool(0),
		WithRedisPrefix(""),
	)
	opts := cfg.clientOptions()

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 30*time.Second, opts.PoolTimeout)
	assert.Equal(t, "orderflow", cfg.Prefix)
}

func TestRedisConfig_PoolDerivesIdleConns(t *testing.T) {
	cases := []struct {
		size, idle int
	}{
		{size: 40, idle: 10},
		{size: 3, idle: 1},
	}
	for _, tc := range cases {
		opts := newRedisConfig(WithRedisServer("redis:6380", "pw", 3), WithRedisPool(tc.size)).clientOptions()
		assert.Equal(t, "redis:6380", opts.Addr)
		assert.Equal(t, "pw", opts.Password)
		assert.Equal(t, 3, opts.DB)
		assert.Equal(t, tc.size, opts.PoolSize)
		assert.Equal(t, tc.idle, opts.MinIdleConns)
		assert.Equal(t, 30*time.Second, opts.PoolTimeout)
	}
}

func TestLayeredCache_MemoryOptions(t *testing.T) {
	lc := NewLayeredCache(nil, WithLayeredMemory(0, -time.Second))
	assert.Equal(t, 1000, lc.memCache.maxSize)
	assert.Equal(t, 30*time.Second, lc.l1TTL)
	_ = lc.memCache.Close()

	lc = NewLayeredCache(nil, WithLayeredMemory(50, 5*time.Second))
	assert.Equal(t, 50, lc.memCache.maxSize)
	assert.Equal(t, 5*time.Second, lc.l1TTL)
	_ = lc.memCache.Close()
}
