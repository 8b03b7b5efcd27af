package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
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

// AlignFromTo floors the time range to bucket boundaries for the chart
// resolution. Buckets are aligned on the unix epoch, matching the candle
// resampler.
func AlignFromTo(from, to time.Time, res string) (time.Time, time.Time) {
	width := bucketWidthMs(res)
	return floorToBucket(from, width), floorToBucket(to, width)
}

func bucketWidthMs(res string) int64 {
	const hour = int64(3600 * 1000)
	switch res {
	case "1h":
		return hour
	case "4h":
		return 4 * hour
	case "12h":
		return 12 * hour
	case "1d":
		return 24 * hour
	case "1w":
		return 7 * 24 * hour
	default:
		return hour
	}
}

func floorToBucket(t time.Time, width int64) time.Time {
	ms := t.UnixMilli()
	ms -= ms % width
	return time.UnixMilli(ms).UTC()
}
