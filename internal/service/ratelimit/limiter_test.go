package ratelimit

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
    l := New(Limit{PerSecond: 0.001, Burst: 2})

    assert.True(t, l.Allow("a"))
    assert.True(t, l.Allow("a"))
    assert.False(t, l.Allow("a"))

    // other keys have their own bucket
    assert.True(t, l.Allow("b"))
}

func TestLimiter_Configure(t *testing.T) {
    l := New(Limit{PerSecond: 0.001, Burst: 1})
    l.Configure("okx", Limit{PerSecond: 0, Burst: 1})

    for i := 0; i < 50; i++ {
        assert.True(t, l.Allow("okx"))
    }
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
    l := New(Limit{PerSecond: 0.001, Burst: 1})
    assert.True(t, l.Allow("k"))

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
    defer cancel()
    assert.Error(t, l.For("k").Wait(ctx))
}
