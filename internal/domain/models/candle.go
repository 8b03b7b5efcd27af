package models

// OHLCPoint is one candle: a bucket of trades summarized by its
// open/high/low/close prices. Timestamps are unix milliseconds and always
// mark the start of the bucket.
type OHLCPoint struct {
	Ts    int64   `json:"ts"`
	Open  float64 `json:"o"`
	High  float64 `json:"h"`
	Low   float64 `json:"l"`
	Close float64 `json:"c"`
}

// PricePoint is a raw price sample, used when a source has no native candles.
type PricePoint struct {
	Ts    int64   `json:"ts"`
	Price float64 `json:"p"`
}

// PriceTick is a live quote from the streaming price feed.
type PriceTick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // ms
}

// ChartSeries bundles the five canonical resolutions for one asset.
// Placeholder is set when every upstream source failed and the series was
// synthesized, so downstream rendering can mark it as such.
type ChartSeries struct {
	CoinID      string      `json:"coinId"`
	H1          []OHLCPoint `json:"1h"`
	H4          []OHLCPoint `json:"4h"`
	H12         []OHLCPoint `json:"12h"`
	D1          []OHLCPoint `json:"1d"`
	W1          []OHLCPoint `json:"1w"`
	Placeholder bool        `json:"placeholder,omitempty"`
}

// Set assigns the series slot for a resolution key ("1h".."1w").
func (s *ChartSeries) Set(key string, series []OHLCPoint) {
	switch key {
	case "1h":
		s.H1 = series
	case "4h":
		s.H4 = series
	case "12h":
		s.H12 = series
	case "1d":
		s.D1 = series
	case "1w":
		s.W1 = series
	}
}

// Resolution returns the series slot for a resolution key, nil when unknown.
func (s *ChartSeries) Resolution(key string) []OHLCPoint {
	switch key {
	case "1h":
		return s.H1
	case "4h":
		return s.H4
	case "12h":
		return s.H12
	case "1d":
		return s.D1
	case "1w":
		return s.W1
	}
	return nil
}
