package models

import (
	"testing"
	"time"
)

func TestPositionRecordRoundTripKeepsAnalysis(t *testing.T) {
	pos := TradingPosition{
		ID:           "pos_1",
		CryptoID:     "bitcoin",
		CryptoSymbol: "BTC",
		Signal: TradingSignal{
			Direction:   DirectionLong,
			EntryPrice:  100,
			StopLoss:    95,
			TakeProfit1: 108,
			TakeProfit2: 115,
		},
		PatternAnalysis: &AnalysisResult{
			Signal:     SignalBullish,
			Bull:       388.12,
			Confidence: 100,
		},
		Status:    PositionActive,
		TargetHit: TargetNone,
		AddedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	rec := pos.Record()
	if rec.PatternAnalysis == "" {
		t.Fatal("analysis dropped on the way to the record")
	}

	back := rec.Position()
	if back.PatternAnalysis == nil {
		t.Fatal("analysis dropped on the way back from the record")
	}
	if back.PatternAnalysis.Bull != 388.12 || back.PatternAnalysis.Signal != SignalBullish {
		t.Errorf("analysis mangled: %+v", back.PatternAnalysis)
	}
	if back.ID != pos.ID || back.Status != pos.Status || back.Signal != pos.Signal {
		t.Errorf("position fields mangled: %+v", back)
	}
}

func TestPositionRecordWithoutAnalysis(t *testing.T) {
	pos := TradingPosition{ID: "pos_2", Status: PositionPending, TargetHit: TargetNone}

	rec := pos.Record()
	if rec.PatternAnalysis != "" {
		t.Errorf("expected empty analysis column, got %q", rec.PatternAnalysis)
	}
	if back := rec.Position(); back.PatternAnalysis != nil {
		t.Errorf("expected nil analysis, got %+v", back.PatternAnalysis)
	}
}
