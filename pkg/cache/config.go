package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption adjusts the Redis backend. Zero values keep the defaults.
type RedisOption func(*RedisConfig)

// RedisConfig is the resolved Redis backend setup.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

func newRedisConfig(opts ...RedisOption) *RedisConfig {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		Prefix:       "orderflow",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *RedisConfig) clientOptions() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		PoolTimeout:  c.PoolTimeout,
		MinIdleConns: c.MinIdleConns,
	}
}

// WithRedisServer points the client at one server and logical database.
func WithRedisServer(addr, password string, db int) RedisOption {
	return func(c *RedisConfig) {
		if addr != "" {
			c.Addr = addr
		}
		c.Password = password
		if db > 0 {
			c.DB = db
		}
	}
}

// WithRedisPool sizes the pool and keeps a quarter of it warm.
func WithRedisPool(size int) RedisOption {
	return func(c *RedisConfig) {
		if size <= 0 {
			return
		}
		c.PoolSize = size
		c.MinIdleConns = max(1, size/4)
	}
}

// WithRedisPrefix namespaces every key written by this process.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		if prefix != "" {
			c.Prefix = prefix
		}
	}
}

// MemoryOption adjusts the in-process cache.
type MemoryOption func(*MemoryConfig)

// MemoryConfig is the resolved in-process cache setup.
type MemoryConfig struct {
	MaxSize         int
	CleanupInterval time.Duration
}

// WithMemoryMaxSize bounds the entry count before LRU eviction.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		if size > 0 {
			c.MaxSize = size
		}
	}
}

// WithMemoryCleanup sets the expiry sweep period. Zero turns the sweeper off;
// expired entries are then dropped on read.
func WithMemoryCleanup(interval time.Duration) MemoryOption {
	return func(c *MemoryConfig) {
		c.CleanupInterval = max(0, interval)
	}
}

// LayeredOption adjusts the L1 tier of a layered cache.
type LayeredOption func(*LayeredConfig)

// LayeredConfig is the resolved L1 setup.
type LayeredConfig struct {
	MemoryMaxSize int
	MemoryTTL     time.Duration
}

// WithLayeredMemory bounds L1 by size and by how long it may serve an entry
// without asking Redis. Non-positive values keep the defaults.
func WithLayeredMemory(size int, ttl time.Duration) LayeredOption {
	return func(c *LayeredConfig) {
		if size > 0 {
			c.MemoryMaxSize = size
		}
		if ttl > 0 {
			c.MemoryTTL = ttl
		}
	}
}
