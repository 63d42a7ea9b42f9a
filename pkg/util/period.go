package util

import (
    "fmt"
    "strconv"
    "strings"
)

const (
    minuteMillis = int64(60 * 1000)
    hourMillis   = 60 * minuteMillis
    dayMillis    = 24 * hourMillis
)

// IntervalToMillis converts a bar interval such as "15m", "4h" or "1d" to milliseconds.
func IntervalToMillis(interval string) (int64, error) {
    value, unit, err := splitUnit(interval)
    if err != nil {
        return 0, err
    }
    switch unit {
    case "m":
        return value * minuteMillis, nil
    case "h":
        return value * hourMillis, nil
    case "d":
        return value * dayMillis, nil
    default:
        return 0, fmt.Errorf("unsupported interval unit %q in %q", unit, interval)
    }
}

// PeriodToMillis converts a lookback period ("1d", "2wk", "1mo", "1y") to milliseconds.
// Months are 30 days and years are 365 days.
func PeriodToMillis(period string) (int64, error) {
    value, unit, err := splitUnit(period)
    if err != nil {
        return 0, err
    }
    switch unit {
    case "d":
        return value * dayMillis, nil
    case "wk":
        return value * 7 * dayMillis, nil
    case "mo":
        return value * 30 * dayMillis, nil
    case "y":
        return value * 365 * dayMillis, nil
    default:
        return 0, fmt.Errorf("unsupported period unit %q in %q", unit, period)
    }
}

// AlignToBucket floors ts to the start of its interval-wide bucket.
func AlignToBucket(ts, intervalMs int64) int64 {
    if intervalMs <= 0 {
        return ts
    }
    return (ts / intervalMs) * intervalMs
}

func splitUnit(s string) (int64, string, error) {
    s = strings.TrimSpace(strings.ToLower(s))
    i := 0
    for i < len(s) && s[i] >= '0' && s[i] <= '9' {
        i++
    }
    if i == 0 || i == len(s) {
        return 0, "", fmt.Errorf("invalid duration %q", s)
    }
    value, err := strconv.ParseInt(s[:i], 10, 64)
    if err != nil {
        return 0, "", fmt.Errorf("invalid duration %q: %w", s, err)
    }
    if value <= 0 {
        return 0, "", fmt.Errorf("duration must be positive: %q", s)
    }
    return value, s[i:], nil
}
