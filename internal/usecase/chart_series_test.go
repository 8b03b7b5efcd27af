package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CryptoBooster/internal/domain/models"
)

type fakeMarketSource struct {
	ohlc   map[int][]models.OHLCPoint // keyed by lookback days
	prices map[int][]models.PricePoint
	err    error
}

func (f *fakeMarketSource) FetchOHLC(_ context.Context, _ string, days int) ([]models.OHLCPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ohlc[days], nil
}

func (f *fakeMarketSource) FetchPrices(_ context.Context, _ string, days int, _ string) ([]models.PricePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices[days], nil
}

const testHourMs = int64(60 * 60 * 1000)

func hourlyCandles(n int) []models.OHLCPoint {
	out := make([]models.OHLCPoint, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i%7)
		out = append(out, models.OHLCPoint{
			Ts: int64(i) * testHourMs, Open: p, High: p + 2, Low: p - 2, Close: p + 1,
		})
	}
	return out
}

func TestGenerateChartSeriesTrimsWindows(t *testing.T) {
	src := &fakeMarketSource{ohlc: map[int][]models.OHLCPoint{
		30:  hourlyCandles(1000),
		365: dailyCandles(400),
	}}
	uc := NewChartSeriesUseCase(src, nil, nil, nil, time.Minute)

	series, err := uc.GenerateChartSeries(context.Background(), "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if series.Placeholder {
		t.Fatal("unexpected placeholder with healthy source")
	}

	checks := []struct {
		name string
		got  []models.OHLCPoint
		want int
	}{
		{"1h", series.H1, 720},
		{"4h", series.H4, 250},  // 1000 hourly candles -> 250 4h buckets
		{"12h", series.H12, 84}, // ceil(1000/12)
		{"1d", series.D1, 180},
		{"1w", series.W1, 58}, // ceil(400/7)
	}
	for _, c := range checks {
		if len(c.got) != c.want {
			t.Errorf("%s length = %d, want %d", c.name, len(c.got), c.want)
		}
	}
}

func dailyCandles(n int) []models.OHLCPoint {
	out := make([]models.OHLCPoint, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i%11)
		out = append(out, models.OHLCPoint{
			Ts: int64(i) * 24 * testHourMs, Open: p, High: p + 3, Low: p - 3, Close: p,
		})
	}
	return out
}

func TestGenerateChartSeriesFallsBackToPrices(t *testing.T) {
	prices := make([]models.PricePoint, 0, 48)
	for i := 0; i < 48; i++ {
		prices = append(prices, models.PricePoint{Ts: int64(i) * testHourMs, Price: 100 + float64(i)})
	}
	src := &fakeMarketSource{
		ohlc:   map[int][]models.OHLCPoint{},
		prices: map[int][]models.PricePoint{30: prices, 365: prices},
	}
	uc := NewChartSeriesUseCase(src, nil, nil, nil, time.Minute)

	series, err := uc.GenerateChartSeries(context.Background(), "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if series.Placeholder {
		t.Fatal("price fallback should not be marked placeholder")
	}
	if len(series.H1) != 48 {
		t.Errorf("1h from hourly prices = %d buckets, want 48", len(series.H1))
	}
	if len(series.D1) != 2 {
		t.Errorf("1d from 48 hourly prices = %d buckets, want 2", len(series.D1))
	}
}

func TestGenerateChartSeriesPlaceholderOnTotalFailure(t *testing.T) {
	src := &fakeMarketSource{err: errors.New("upstream down")}
	uc := NewChartSeriesUseCase(src, nil, nil, nil, time.Minute)

	series, err := uc.GenerateChartSeries(context.Background(), "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if !series.Placeholder {
		t.Fatal("expected placeholder flag on total failure")
	}
	for _, key := range []string{"1h", "4h", "12h", "1d", "1w"} {
		s := series.Resolution(key)
		if len(s) == 0 {
			t.Errorf("%s placeholder series is empty", key)
		}
		for i := 1; i < len(s); i++ {
			if s[i].Ts <= s[i-1].Ts {
				t.Fatalf("%s placeholder not ascending at %d", key, i)
			}
		}
		for _, p := range s {
			if p.Low > p.Open || p.Low > p.Close || p.High < p.Open || p.High < p.Close {
				t.Fatalf("%s placeholder violates OHLC invariants: %+v", key, p)
			}
		}
	}
}

func TestPlaceholderDeterministicPerCoin(t *testing.T) {
	now := time.Now()
	a := placeholderSeries("bitcoin", now)
	b := placeholderSeries("bitcoin", now)
	other := placeholderSeries("ethereum", now)

	if len(a.H1) == 0 || a.H1[0] != b.H1[0] || a.H1[len(a.H1)-1] != b.H1[len(b.H1)-1] {
		t.Error("same coin produced different placeholder values")
	}
	if a.H1[0].Open == other.H1[0].Open {
		t.Error("different coins produced identical placeholder base price")
	}
}

func TestGenerateChartSeriesCrossFallback(t *testing.T) {
	// Coarse window healthy, fine window completely missing: intraday
	// resolutions borrow the daily data instead of coming back empty.
	src := &fakeMarketSource{
		ohlc:   map[int][]models.OHLCPoint{365: dailyCandles(100)},
		prices: map[int][]models.PricePoint{},
	}
	uc := NewChartSeriesUseCase(src, nil, nil, nil, time.Minute)

	series, err := uc.GenerateChartSeries(context.Background(), "bitcoin")
	if err != nil {
		t.Fatal(err)
	}
	if series.Placeholder {
		t.Fatal("cross-fallback should not be a placeholder")
	}
	if len(series.H1) == 0 || len(series.W1) == 0 {
		t.Errorf("cross-fallback left series empty: 1h=%d 1w=%d", len(series.H1), len(series.W1))
	}
}
