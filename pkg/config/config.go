package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment" default:"development" validate:"oneof=development staging production"`
	Log         LogConfig       `yaml:"log"`
	Server      ServerConfig    `yaml:"server"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Engine      EngineConfig    `yaml:"engine"`
	Venues      []VenueConfig   `yaml:"venues" validate:"required,min=1,dive"`
	Cache       CacheConfig     `yaml:"cache"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
	// Digest aggregates repeated venue errors and warnings onto Kafka.
	Digest struct {
		Enabled        bool          `yaml:"enabled"`
		Interval       time.Duration `yaml:"interval" default:"1m"`
		CountThreshold int           `yaml:"count_threshold" default:"100"`
	} `yaml:"digest"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"90s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       struct {
		PerSecond float64 `yaml:"per_second" default:"5"`
		Burst     int     `yaml:"burst" default:"10"`
	} `yaml:"rate_limit"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" default:"/metrics"`
}

type EngineConfig struct {
	MinVenues           int           `yaml:"min_venues" default:"2" validate:"gte=1"`
	RunTimeout          time.Duration `yaml:"run_timeout" default:"60s"`
	AttemptTimeout      time.Duration `yaml:"attempt_timeout" default:"15s"`
	MaxRetries          int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=10"`
	RetryBaseDelay      time.Duration `yaml:"retry_base_delay" default:"1s"`
	DivergenceThreshold float64       `yaml:"divergence_threshold" default:"0.2" validate:"gt=0"`
	HighValueMultiple   float64       `yaml:"high_value_multiple" default:"1.5" validate:"gt=0"`
	DefaultLookback     int           `yaml:"default_lookback" default:"50" validate:"gte=10"`
	MaxLookback         int           `yaml:"max_lookback" default:"1000" validate:"gtefield=DefaultLookback"`
	MaxTrades           int           `yaml:"max_trades" default:"50000" validate:"gte=1000"`
	Validation          struct {
		MinSamples          int           `yaml:"min_samples" default:"10" validate:"gte=1"`
		MaxSideRatio        float64       `yaml:"max_side_ratio" default:"10" validate:"gt=1"`
		MaxMissingTimestamp float64       `yaml:"max_missing_timestamp" default:"0.1" validate:"gte=0,lte=1"`
		MaxGap              time.Duration `yaml:"max_gap" default:"1h"`
	} `yaml:"validation"`
}

// VenueConfig describes one venue. Order in the file is the order of diagnostics.
type VenueConfig struct {
	ID                string        `yaml:"id" validate:"required"`
	Name              string        `yaml:"name"`
	Enabled           *bool         `yaml:"enabled"`
	Priority          float64       `yaml:"priority" validate:"gt=0,lte=1"`
	Level             string        `yaml:"level" default:"candle" validate:"oneof=trade candle"`
	ProvidesTakerSide bool          `yaml:"provides_taker_side"`
	Estimator         string        `yaml:"estimator" default:"flat" validate:"oneof=flat direction"`
	SymbolFormat      string        `yaml:"symbol_format" default:"{base}-{quote}"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout" default:"15s"`
	RateLimit         struct {
		PerSecond float64 `yaml:"per_second" default:"5"`
		Burst     int     `yaml:"burst" default:"5"`
	} `yaml:"rate_limit"`
}

// IsEnabled treats a missing flag as enabled.
func (v VenueConfig) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

type CacheConfig struct {
	Backend   string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis layered"`
	TTL       time.Duration `yaml:"ttl" default:"30s"`
	MaxSize   int           `yaml:"max_size" default:"1000"`
	MemoryTTL time.Duration `yaml:"memory_ttl" default:"10s"`
	Redis     struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"orderflow"`
	} `yaml:"redis"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Compression string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Topics      struct {
		Requests    string `yaml:"requests" default:"orderflow.requests"`
		Snapshots   string `yaml:"snapshots" default:"orderflow.snapshots"`
		Divergences string `yaml:"divergences" default:"orderflow.divergences"`
		VenueHealth string `yaml:"venue_health" default:"orderflow.venue_health"`
	} `yaml:"topics"`
	Producer struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		Enabled    bool          `yaml:"enabled"`
		GroupID    string        `yaml:"group_id" default:"orderflow"`
		Workers    int           `yaml:"workers" default:"2"`
		RetryMax   int           `yaml:"retry_max" default:"2"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic"`
	} `yaml:"consumer"`
}

type SchedulerConfig struct {
	Enabled bool        `yaml:"enabled"`
	Jobs    []JobConfig `yaml:"jobs" validate:"dive"`
}

type JobConfig struct {
	Schedule string `yaml:"schedule" validate:"required"`
	Symbol   string `yaml:"symbol" validate:"required"`
	Interval string `yaml:"interval" default:"15m" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 12h 1d"`
	Lookback int    `yaml:"lookback" default:"50" validate:"gte=10"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads .env (when present), the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("ORDERFLOW_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("VENUES_DISABLED"); v != "" {
		off := map[string]bool{}
		for _, id := range splitList(v) {
			off[id] = true
		}
		disabled := false
		for i := range c.Venues {
			if off[c.Venues[i].ID] {
				c.Venues[i].Enabled = &disabled
			}
		}
	}
	return nil
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks tags plus the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	seen := map[string]bool{}
	enabled := 0
	for _, v := range c.Venues {
		if seen[v.ID] {
			return fmt.Errorf("duplicate venue id %q", v.ID)
		}
		seen[v.ID] = true
		if v.IsEnabled() {
			enabled++
		}
	}
	if enabled < c.Engine.MinVenues {
		return fmt.Errorf("%d venues enabled, engine.min_venues needs %d", enabled, c.Engine.MinVenues)
	}
	return nil
}

// EnabledVenues returns the enabled venues in file order.
func (c *Config) EnabledVenues() []VenueConfig {
	out := make([]VenueConfig, 0, len(c.Venues))
	for _, v := range c.Venues {
		if v.IsEnabled() {
			out = append(out, v)
		}
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
