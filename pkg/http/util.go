package http

import (
	"time"

	xutil "TipFusion/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time { return xutil.ParseTimeDefault(s, def) }

// QueryRange resolves from/to query values against now, looking back by default.
func QueryRange(from, to string, lookback time.Duration) (time.Time, time.Time) {
	return xutil.ResolveRange(from, to, time.Now().UTC(), lookback)
}
