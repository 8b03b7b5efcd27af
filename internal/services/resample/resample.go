package resample

import (
	"sort"

	"CryptoBooster/internal/domain/models"
)

// ResampleOHLC groups candles into fixed-width buckets keyed by
// floor(ts/width)*width. Within a bucket the first row encountered sets the
// open, highs and lows widen the range, and the last row sets the close.
// Callers wanting a deterministic open must pre-sort ascending by timestamp.
// Output is sorted ascending by bucket key; empty input yields an empty slice.
func ResampleOHLC(rows []models.OHLCPoint, bucketWidthMs int64) []models.OHLCPoint {
	if bucketWidthMs <= 0 {
		return []models.OHLCPoint{}
	}
	buckets := make(map[int64]*models.OHLCPoint, len(rows))
	for _, k := range rows {
		key := (k.Ts / bucketWidthMs) * bucketWidthMs
		b, ok := buckets[key]
		if !ok {
			buckets[key] = &models.OHLCPoint{Ts: key, Open: k.Open, High: k.High, Low: k.Low, Close: k.Close}
			continue
		}
		if k.High > b.High {
			b.High = k.High
		}
		if k.Low < b.Low {
			b.Low = k.Low
		}
		b.Close = k.Close
	}
	return sorted(buckets)
}

// ResamplePricesToOHLC builds candles from raw price samples. Each sample
// starts its bucket as open=high=low=close=price, then subsequent samples in
// the same bucket widen the range and move the close.
func ResamplePricesToOHLC(prices []models.PricePoint, bucketWidthMs int64) []models.OHLCPoint {
	if bucketWidthMs <= 0 {
		return []models.OHLCPoint{}
	}
	buckets := make(map[int64]*models.OHLCPoint, len(prices))
	for _, r := range prices {
		key := (r.Ts / bucketWidthMs) * bucketWidthMs
		b, ok := buckets[key]
		if !ok {
			buckets[key] = &models.OHLCPoint{Ts: key, Open: r.Price, High: r.Price, Low: r.Price, Close: r.Price}
			continue
		}
		if r.Price > b.High {
			b.High = r.Price
		}
		if r.Price < b.Low {
			b.Low = r.Price
		}
		b.Close = r.Price
	}
	return sorted(buckets)
}

// Tail returns the last n points, or the whole series when shorter.
func Tail(series []models.OHLCPoint, n int) []models.OHLCPoint {
	if n <= 0 || len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func sorted(buckets map[int64]*models.OHLCPoint) []models.OHLCPoint {
	out := make([]models.OHLCPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ts < out[j].Ts })
	return out
}
