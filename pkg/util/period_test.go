package util

import "testing"

func TestIntervalToMillis(t *testing.T) {
    cases := map[string]int64{
        "1m":  60000,
        "3m":  180000,
        "15m": 900000,
        "2h":  7200000,
        "12h": 43200000,
        "1d":  86400000,
    }
    for in, want := range cases {
        got, err := IntervalToMillis(in)
        if err != nil {
            t.Fatalf("%s: unexpected error %v", in, err)
        }
        if got != want {
            t.Fatalf("%s: got %d want %d", in, got, want)
        }
    }
    if _, err := IntervalToMillis("15x"); err == nil {
        t.Fatalf("expected error for unknown unit")
    }
    if _, err := IntervalToMillis("m"); err == nil {
        t.Fatalf("expected error for missing value")
    }
}

func TestPeriodToMillis(t *testing.T) {
    got, err := PeriodToMillis("1mo")
    if err != nil {
        t.Fatalf("unexpected error %v", err)
    }
    if got != 30*dayMillis {
        t.Fatalf("unexpected month %d", got)
    }
    got, err = PeriodToMillis("2wk")
    if err != nil || got != 14*dayMillis {
        t.Fatalf("unexpected week %d %v", got, err)
    }
    if _, err := PeriodToMillis("0d"); err == nil {
        t.Fatalf("expected error for zero period")
    }
}

func TestAlignToBucket(t *testing.T) {
    if got := AlignToBucket(1_700_000_123_456, 900000); got%900000 != 0 || got > 1_700_000_123_456 {
        t.Fatalf("bad alignment %d", got)
    }
    if got := AlignToBucket(1800000, 900000); got != 1800000 {
        t.Fatalf("aligned ts moved: %d", got)
    }
}
