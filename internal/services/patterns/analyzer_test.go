package patterns

import (
	"testing"

	"CryptoBooster/internal/domain/models"
)

func TestAnalyzeSingleWeeklyCupAndHandle(t *testing.T) {
	res := AnalyzePatterns(
		models.PatternSelection{"Weekly": "Cup & Handle"},
		models.MomentumContext{"Weekly": models.MomentumReversalZone},
	)
	if res.Signal != models.SignalBullish {
		t.Fatalf("expected Bullish, got %s", res.Signal)
	}
	// 90 * 1.15 (Légendaire) * 3 (Weekly) * 1.25 (Retournement_zone)
	if res.Bull != 388.12 {
		t.Fatalf("expected bull 388.12, got %v", res.Bull)
	}
	if res.Bear != 0 {
		t.Fatalf("expected bear 0, got %v", res.Bear)
	}
	if res.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %v", res.Confidence)
	}
	if res.Details.StrongestPattern != "Cup & Handle" {
		t.Fatalf("unexpected strongest pattern %q", res.Details.StrongestPattern)
	}
	if len(res.Details.DominantTimeframes) != 1 || res.Details.DominantTimeframes[0] != "Weekly" {
		t.Fatalf("unexpected dominant timeframes %v", res.Details.DominantTimeframes)
	}
}

func TestAnalyzeTimeframeWeightMonotonic(t *testing.T) {
	low := AnalyzePatterns(models.PatternSelection{"1h": "Drapeau (Flag)"}, nil)
	high := AnalyzePatterns(models.PatternSelection{"Monthly": "Drapeau (Flag)"}, nil)
	if high.Bull <= low.Bull {
		t.Fatalf("expected Monthly contribution > 1h: %v vs %v", high.Bull, low.Bull)
	}
}

func TestAnalyzeUnknownPatternsSkipped(t *testing.T) {
	res := AnalyzePatterns(models.PatternSelection{
		"Daily": "Not A Pattern",
		"4h":    "Also Unknown",
	}, nil)
	if res.Signal != models.SignalNeutral || res.Confidence != 0 {
		t.Fatalf("expected neutral zero result, got %s/%v", res.Signal, res.Confidence)
	}
	if res.Details.StrongestPattern != "Aucun pattern détecté" {
		t.Fatalf("unexpected strongest pattern %q", res.Details.StrongestPattern)
	}
	if len(res.Details.SkippedPatterns) != 2 {
		t.Fatalf("expected 2 skipped patterns, got %v", res.Details.SkippedPatterns)
	}
}

func TestAnalyzeNeutralOnlySelection(t *testing.T) {
	res := AnalyzePatterns(models.PatternSelection{
		"Weekly": "Diamant",
		"Daily":  "Triangle Symétrique",
	}, nil)
	if res.Signal != models.SignalNeutral {
		t.Fatalf("expected Neutre, got %s", res.Signal)
	}
	if res.Bull != 0 || res.Bear != 0 || res.Confidence != 0 {
		t.Fatalf("neutral-only selection should score zero, got %+v", res)
	}
	// processed for diagnostics even though they score nothing
	if res.Details.Patterns["Weekly"] != "Diamant" {
		t.Fatalf("expected Diamant recorded for Weekly, got %v", res.Details.Patterns)
	}
}

func TestAnalyzeConfidenceBound(t *testing.T) {
	sel, mom := ExampleSelection()
	res := AnalyzePatterns(sel, mom)
	if res.Confidence < 0 || res.Confidence > 100 {
		t.Fatalf("confidence out of bounds: %v", res.Confidence)
	}
	dominant := res.Bull
	if res.Bear > res.Bull {
		dominant = res.Bear
	}
	want := round2(dominant / (res.Bull + res.Bear) * 100)
	// bull/bear are rounded after summing, so allow a cent of drift
	if diff := res.Confidence - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("confidence %v does not match dominance %v", res.Confidence, want)
	}
	if len(res.Details.DominantTimeframes) > 3 {
		t.Fatalf("at most 3 dominant timeframes, got %v", res.Details.DominantTimeframes)
	}
}

func TestAnalyzeMixedSignals(t *testing.T) {
	res := AnalyzePatterns(models.PatternSelection{
		"Weekly": "Tête et Épaules",   // bearish 90 * 1.10 * 3
		"1h":     "Double Bottom (W)", // bullish 85 * 1.00 * 1
	}, nil)
	if res.Signal != models.SignalBearish {
		t.Fatalf("expected Bearish, got %s", res.Signal)
	}
	if res.Details.DominantTimeframes[0] != "Weekly" {
		t.Fatalf("expected Weekly dominant, got %v", res.Details.DominantTimeframes)
	}
	if res.Details.StrongestPattern != "Tête et Épaules" {
		t.Fatalf("unexpected strongest pattern %q", res.Details.StrongestPattern)
	}
}

func TestCatalogLookups(t *testing.T) {
	names := AvailablePatterns()
	if len(names) != 19 {
		t.Fatalf("expected 19 catalog entries, got %d", len(names))
	}
	d, ok := PatternDetails("Cup & Handle")
	if !ok || d.Rarity != models.RarityLegendary || d.Power != 90 {
		t.Fatalf("unexpected details for Cup & Handle: %+v", d)
	}
	if _, ok := PatternDetails("nope"); ok {
		t.Fatal("expected miss for unknown pattern")
	}
}
