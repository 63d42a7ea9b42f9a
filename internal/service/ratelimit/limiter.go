package ratelimit

import (
    "context"
    "sync"

    "golang.org/x/time/rate"
)

// Limit is a token bucket definition: burst tokens refilled at PerSecond.
type Limit struct {
    PerSecond float64
    Burst     int
}

// Limiter keeps one token bucket per key (a venue ID or a client IP).
type Limiter struct {
    mu       sync.Mutex
    m        map[string]*rate.Limiter
    fallback Limit
    limits   map[string]Limit
}

func New(fallback Limit) *Limiter {
    if fallback.Burst < 1 {
        fallback.Burst = 1
    }
    return &Limiter{m: make(map[string]*rate.Limiter), fallback: fallback, limits: make(map[string]Limit)}
}

// Configure sets the bucket for key. Existing buckets are replaced.
func (l *Limiter) Configure(key string, lim Limit) {
    if lim.Burst < 1 {
        lim.Burst = 1
    }
    l.mu.Lock()
    l.limits[key] = lim
    delete(l.m, key)
    l.mu.Unlock()
}

func (l *Limiter) get(key string) *rate.Limiter {
    l.mu.Lock()
    defer l.mu.Unlock()
    b, ok := l.m[key]
    if !ok {
        lim, ok := l.limits[key]
        if !ok {
            lim = l.fallback
        }
        r := rate.Limit(lim.PerSecond)
        if lim.PerSecond <= 0 {
            r = rate.Inf
        }
        b = rate.NewLimiter(r, lim.Burst)
        l.m[key] = b
    }
    return b
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    return l.get(key).Allow()
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
    return l.get(key).Wait(ctx)
}

// For binds the limiter to one key.
func (l *Limiter) For(key string) KeyLimiter {
    return KeyLimiter{l: l, key: key}
}

// KeyLimiter waits on a single bucket.
type KeyLimiter struct {
    l   *Limiter
    key string
}

func (k KeyLimiter) Wait(ctx context.Context) error {
    return k.l.Wait(ctx, k.key)
}
