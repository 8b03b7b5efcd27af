package resample

import (
	"testing"

	"CryptoBooster/internal/domain/models"
)

const hourMs = int64(60 * 60 * 1000)

func TestResampleOHLCBuckets(t *testing.T) {
	rows := []models.OHLCPoint{
		{Ts: 0, Open: 10, High: 12, Low: 9, Close: 11},
		{Ts: 30 * 60 * 1000, Open: 11, High: 15, Low: 10, Close: 14},
		{Ts: hourMs + 1, Open: 14, High: 16, Low: 13, Close: 13},
	}
	out := ResampleOHLC(rows, hourMs)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	b := out[0]
	if b.Ts != 0 || b.Open != 10 || b.High != 15 || b.Low != 9 || b.Close != 14 {
		t.Fatalf("unexpected first bucket %+v", b)
	}
	if out[1].Ts != hourMs {
		t.Fatalf("expected second bucket at %d, got %d", hourMs, out[1].Ts)
	}
}

func TestResampleOHLCEmptyInput(t *testing.T) {
	out := ResampleOHLC(nil, hourMs)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %v", out)
	}
}

func TestResampleOHLCIdempotent(t *testing.T) {
	rows := []models.OHLCPoint{
		{Ts: 100, Open: 1, High: 3, Low: 0.5, Close: 2},
		{Ts: hourMs + 100, Open: 2, High: 4, Low: 1.5, Close: 3},
		{Ts: 2*hourMs + 100, Open: 3, High: 5, Low: 2.5, Close: 4},
	}
	once := ResampleOHLC(rows, hourMs)
	twice := ResampleOHLC(once, hourMs)
	if len(once) != len(twice) {
		t.Fatalf("length changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("bucket %d changed: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestResampleOHLCInvariants(t *testing.T) {
	rows := []models.OHLCPoint{
		{Ts: 10, Open: 100, High: 110, Low: 95, Close: 105},
		{Ts: 20, Open: 105, High: 120, Low: 90, Close: 92},
		{Ts: hourMs + 10, Open: 92, High: 99, Low: 88, Close: 97},
		{Ts: 3*hourMs + 5, Open: 97, High: 101, Low: 96, Close: 100},
	}
	out := ResampleOHLC(rows, hourMs)
	var prev int64 = -1
	for _, b := range out {
		if b.Ts <= prev {
			t.Fatalf("buckets not strictly ascending at %d", b.Ts)
		}
		prev = b.Ts
		if b.Low > b.High {
			t.Fatalf("low > high in bucket %+v", b)
		}
		if b.Open < b.Low || b.Open > b.High {
			t.Fatalf("open outside range in bucket %+v", b)
		}
		if b.Close < b.Low || b.Close > b.High {
			t.Fatalf("close outside range in bucket %+v", b)
		}
	}
}

func TestResamplePricesToOHLC(t *testing.T) {
	prices := []models.PricePoint{
		{Ts: 0, Price: 10},
		{Ts: 1000, Price: 14},
		{Ts: 2000, Price: 8},
		{Ts: 3000, Price: 12},
		{Ts: hourMs, Price: 20},
	}
	out := ResamplePricesToOHLC(prices, hourMs)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	b := out[0]
	if b.Open != 10 || b.High != 14 || b.Low != 8 || b.Close != 12 {
		t.Fatalf("unexpected widened bucket %+v", b)
	}
	if out[1].Open != 20 || out[1].Close != 20 {
		t.Fatalf("single-sample bucket should be flat, got %+v", out[1])
	}
}

func TestTail(t *testing.T) {
	series := make([]models.OHLCPoint, 10)
	for i := range series {
		series[i].Ts = int64(i)
	}
	got := Tail(series, 3)
	if len(got) != 3 || got[0].Ts != 7 {
		t.Fatalf("unexpected tail %v", got)
	}
	if len(Tail(series, 100)) != 10 {
		t.Fatalf("tail larger than series should return all")
	}
}
