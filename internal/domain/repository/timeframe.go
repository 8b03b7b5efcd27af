package repository

// Timeframe represents a chart candle resolution.
type Timeframe string

const (
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF12h Timeframe = "12h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
)

const (
	hourMs = int64(60 * 60 * 1000)
	dayMs  = 24 * hourMs
)

// BucketWidthMs returns the fixed bucket width of the timeframe in integer
// milliseconds. Integer math keeps bucket keys drift-free over long runs.
func (tf Timeframe) BucketWidthMs() int64 {
	switch tf {
	case TF1h:
		return hourMs
	case TF4h:
		return 4 * hourMs
	case TF12h:
		return 12 * hourMs
	case TF1d:
		return dayMs
	case TF1w:
		return 7 * dayMs
	default:
		return hourMs
	}
}

// WindowLimit returns how many trailing buckets a chart series keeps.
func (tf Timeframe) WindowLimit() int {
	switch tf {
	case TF1h:
		return 720
	case TF4h:
		return 360
	case TF12h:
		return 240
	case TF1d:
		return 180
	case TF1w:
		return 120
	default:
		return 720
	}
}

// ChartTimeframes lists the five canonical resolutions, finest first.
func ChartTimeframes() []Timeframe {
	return []Timeframe{TF1h, TF4h, TF12h, TF1d, TF1w}
}

// IsValidTimeframe returns true if tf is a supported chart timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1h, TF4h, TF12h, TF1d, TF1w:
		return true
	default:
		return false
	}
}

// NormalizeTimeframe converts a raw string to a valid timeframe (or 1h).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return TF1h
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return TF1h
}
