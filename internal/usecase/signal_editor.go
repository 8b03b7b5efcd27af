package usecase

import (
	"math"

	"CryptoBooster/internal/domain/models"
)

// SignalEditor applies manual edits to a position's trading signal. It owns
// the derived-field rules so handlers never touch them directly: the
// risk/reward ratio is always recomputed from the edited levels, and the
// edit/verify flags are set here.
type SignalEditor struct {
	store *PositionStore
}

func NewSignalEditor(store *PositionStore) *SignalEditor {
	return &SignalEditor{store: store}
}

// EditSignal overwrites the signal of a position with recomputed risk/reward
// and marks it manually edited and verified. Returns false when the id is
// unknown.
func (e *SignalEditor) EditSignal(id string, signal models.TradingSignal) bool {
	signal.RiskRewardRatio = RiskReward(signal.EntryPrice, signal.StopLoss, signal.TakeProfit1)
	return e.store.UpdatePositionSignal(id, signal, true, true)
}

// RiskReward computes |tp1-entry| / |entry-sl| rounded to two decimals. A
// degenerate signal with entry == stop loss yields 1 rather than dividing by
// zero.
func RiskReward(entry, stopLoss, takeProfit1 float64) float64 {
	risk := math.Abs(entry - stopLoss)
	if risk == 0 {
		return 1
	}
	reward := math.Abs(takeProfit1 - entry)
	return round2(reward / risk)
}
