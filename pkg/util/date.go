package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, date-only and unix seconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ResolveRange parses an optional [from, to] query window. Missing bounds
// default to now and now-lookback; reversed bounds are swapped.
func ResolveRange(fromStr, toStr string, now time.Time, lookback time.Duration) (time.Time, time.Time) {
	to := ParseTimeDefault(toStr, now)
	from := ParseTimeDefault(fromStr, to.Add(-lookback))
	if from.After(to) {
		from, to = to, from
	}
	return from, to
}
