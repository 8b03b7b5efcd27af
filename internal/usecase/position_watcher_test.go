package usecase

import (
	"context"
	"testing"

	"CryptoBooster/internal/domain/models"
)

func tick(symbol string, price float64) *models.PriceTick {
	return &models.PriceTick{Symbol: symbol, Price: price, Timestamp: 1700000000000}
}

func TestWatcherActivatesPendingInEntryZone(t *testing.T) {
	store := newTestStore()
	w := NewPositionWatcher(store, nil, nil)
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	if err := w.Process(context.Background(), tick("BTC", 101)); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, ok := store.GetPosition(pos.ID)
	if !ok || got.Status != models.PositionActive {
		t.Fatalf("status = %q, want active", got.Status)
	}
}

func TestWatcherClosesActiveOnTarget(t *testing.T) {
	store := newTestStore()
	w := NewPositionWatcher(store, nil, nil)
	pos := store.AddPosition(testAsset(), longSignal(), nil)
	store.UpdatePositionStatus(pos.ID, models.PositionActive, "")

	if err := w.Process(context.Background(), tick("BTC", 115.5)); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := store.GetPosition(pos.ID)
	if got.Status != models.PositionClosed {
		t.Fatalf("status = %q, want closed", got.Status)
	}
	if got.TargetHit != models.TargetTP2 {
		t.Fatalf("targetHit = %q, want tp2", got.TargetHit)
	}
}

func TestWatcherStopsOutActive(t *testing.T) {
	store := newTestStore()
	w := NewPositionWatcher(store, nil, nil)
	pos := store.AddPosition(testAsset(), longSignal(), nil)
	store.UpdatePositionStatus(pos.ID, models.PositionActive, "")

	w.Process(context.Background(), tick("BTC", 94))

	got, _ := store.GetPosition(pos.ID)
	if got.Status != models.PositionClosed || got.TargetHit != models.TargetSL {
		t.Fatalf("got status=%q targetHit=%q, want closed/sl", got.Status, got.TargetHit)
	}
}

func TestWatcherIgnoresOtherSymbols(t *testing.T) {
	store := newTestStore()
	w := NewPositionWatcher(store, nil, nil)
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	w.Process(context.Background(), tick("ETH", 101))

	got, _ := store.GetPosition(pos.ID)
	if got.Status != models.PositionPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
}

func TestWatcherLeavesWaitingPositionsAlone(t *testing.T) {
	store := newTestStore()
	w := NewPositionWatcher(store, nil, nil)
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	// Outside the entry zone, below every target.
	w.Process(context.Background(), tick("BTC", 104))

	got, _ := store.GetPosition(pos.ID)
	if got.Status != models.PositionPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
}
