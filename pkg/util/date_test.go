package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 10, 10, 10, 37, 12, 0, time.UTC)
	to := time.Date(2024, 10, 11, 3, 5, 0, 0, time.UTC)

	af, at := AlignFromTo(from, to, "4h")
	if af.Hour() != 8 || af.Minute() != 0 {
		t.Fatalf("unexpected from %v", af)
	}
	if at.Hour() != 0 || at.Day() != 11 {
		t.Fatalf("unexpected to %v", at)
	}

	af, _ = AlignFromTo(from, to, "1d")
	if af.Hour() != 0 || af.Day() != 10 {
		t.Fatalf("unexpected daily from %v", af)
	}
}
