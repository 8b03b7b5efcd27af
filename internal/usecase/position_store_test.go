package usecase

import (
	"testing"

	"CryptoBooster/internal/domain/models"
)

func newTestStore() *PositionStore {
	return NewPositionStore(nil, nil, nil)
}

func testAsset() models.CryptoAsset {
	return models.CryptoAsset{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"}
}

func longSignal() models.TradingSignal {
	return models.TradingSignal{
		Direction:       models.DirectionLong,
		EntryPrice:      100,
		StopLoss:        95,
		TakeProfit1:     108,
		TakeProfit2:     115,
		Confidence:      80,
		RiskRewardRatio: 1.6,
	}
}

func TestAddPositionDefaults(t *testing.T) {
	store := newTestStore()

	pos := store.AddPosition(testAsset(), longSignal(), nil)

	if pos.ID == "" {
		t.Fatal("expected generated id")
	}
	if pos.Status != models.PositionPending {
		t.Errorf("new position status = %q, want pending", pos.Status)
	}
	if pos.TargetHit != models.TargetNone {
		t.Errorf("new position targetHit = %q, want none", pos.TargetHit)
	}
	if pos.AddedAt.IsZero() {
		t.Error("addedAt not set")
	}
}

func TestPositionsNewestFirst(t *testing.T) {
	store := newTestStore()

	first := store.AddPosition(testAsset(), longSignal(), nil)
	second := store.AddPosition(models.CryptoAsset{ID: "ethereum", Symbol: "ETH"}, longSignal(), nil)

	all := store.GetAllPositions()
	if len(all) != 2 {
		t.Fatalf("got %d positions, want 2", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("positions not ordered newest first: %s, %s", all[0].ID, all[1].ID)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.PositionStatus
		to   models.PositionStatus
		ok   bool
	}{
		{"pending to active", models.PositionPending, models.PositionActive, true},
		{"pending to cancelled", models.PositionPending, models.PositionCancelled, true},
		{"active to closed", models.PositionActive, models.PositionClosed, true},
		{"pending to closed skips active", models.PositionPending, models.PositionClosed, false},
		{"active to cancelled", models.PositionActive, models.PositionCancelled, false},
		{"active back to pending", models.PositionActive, models.PositionPending, false},
		{"closed is terminal", models.PositionClosed, models.PositionActive, false},
		{"cancelled is terminal", models.PositionCancelled, models.PositionActive, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := transitionAllowed(tc.from, tc.to); got != tc.ok {
				t.Errorf("transitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
			}
		})
	}
}

func TestUpdatePositionStatusRejectsIllegalMove(t *testing.T) {
	store := newTestStore()
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	notifications := 0
	unsub := store.Subscribe(func([]models.TradingPosition) { notifications++ })
	defer unsub()
	if notifications != 1 {
		t.Fatalf("subscribe fired %d times, want 1 immediate snapshot", notifications)
	}

	if store.UpdatePositionStatus(pos.ID, models.PositionClosed, models.TargetTP1) {
		t.Error("pending -> closed accepted, want rejection")
	}
	if notifications != 1 {
		t.Errorf("rejected transition notified subscribers (%d calls)", notifications)
	}

	got, _ := store.GetPosition(pos.ID)
	if got.Status != models.PositionPending {
		t.Errorf("status changed to %q after rejected transition", got.Status)
	}

	if !store.UpdatePositionStatus(pos.ID, models.PositionActive, "") {
		t.Fatal("pending -> active rejected")
	}
	if notifications != 2 {
		t.Errorf("accepted transition notified %d times, want 2 total", notifications)
	}
}

func TestUpdatePositionStatusKeepsTargetHitWhenOmitted(t *testing.T) {
	store := newTestStore()
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	store.UpdatePositionStatus(pos.ID, models.PositionActive, "")
	got, _ := store.GetPosition(pos.ID)
	if got.TargetHit != models.TargetNone {
		t.Errorf("targetHit = %q after activation, want none", got.TargetHit)
	}

	store.UpdatePositionStatus(pos.ID, models.PositionClosed, models.TargetTP2)
	got, _ = store.GetPosition(pos.ID)
	if got.TargetHit != models.TargetTP2 {
		t.Errorf("targetHit = %q after close, want tp2", got.TargetHit)
	}
}

func TestUnknownIDMutationsAreSilent(t *testing.T) {
	store := newTestStore()
	store.AddPosition(testAsset(), longSignal(), nil)

	notifications := 0
	unsub := store.Subscribe(func([]models.TradingPosition) { notifications++ })
	defer unsub()

	if store.RemovePosition("nope") {
		t.Error("RemovePosition of unknown id returned true")
	}
	if store.UpdatePositionNotes("nope", "x") {
		t.Error("UpdatePositionNotes of unknown id returned true")
	}
	if store.UpdatePositionStatus("nope", models.PositionActive, "") {
		t.Error("UpdatePositionStatus of unknown id returned true")
	}
	if notifications != 1 {
		t.Errorf("no-op mutations notified subscribers (%d calls, want 1)", notifications)
	}
}

func TestSubscribeSnapshotAndUnsubscribe(t *testing.T) {
	store := newTestStore()
	store.AddPosition(testAsset(), longSignal(), nil)

	var lastSnap []models.TradingPosition
	calls := 0
	unsub := store.Subscribe(func(snap []models.TradingPosition) {
		calls++
		lastSnap = snap
	})

	if calls != 1 || len(lastSnap) != 1 {
		t.Fatalf("immediate snapshot: calls=%d len=%d, want 1/1", calls, len(lastSnap))
	}

	store.AddPosition(models.CryptoAsset{ID: "solana", Symbol: "SOL"}, longSignal(), nil)
	if calls != 2 || len(lastSnap) != 2 {
		t.Fatalf("after add: calls=%d len=%d, want 2/2", calls, len(lastSnap))
	}

	unsub()
	store.ClearAllPositions()
	if calls != 2 {
		t.Errorf("callback fired after unsubscribe (%d calls)", calls)
	}
}

func TestEventSubscribers(t *testing.T) {
	store := newTestStore()

	var events []string
	unsub := store.SubscribeEvents(func(ev models.PositionEvent) {
		events = append(events, ev.Type)
	})
	defer unsub()

	pos := store.AddPosition(testAsset(), longSignal(), nil)
	store.UpdatePositionStatus(pos.ID, models.PositionActive, "")
	store.UpdatePositionNotes(pos.ID, "watching")
	store.RemovePosition(pos.ID)
	store.ClearAllPositions()

	want := []string{
		models.EventPositionAdded,
		models.EventStatusChanged,
		models.EventNotesUpdated,
		models.EventPositionRemoved,
		models.EventPositionsClear,
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestHasPositionIgnoresTerminal(t *testing.T) {
	store := newTestStore()
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	if !store.HasPosition("bitcoin") {
		t.Fatal("pending position not reported")
	}

	store.UpdatePositionStatus(pos.ID, models.PositionActive, "")
	if !store.HasPosition("bitcoin") {
		t.Fatal("active position not reported")
	}

	store.UpdatePositionStatus(pos.ID, models.PositionClosed, models.TargetSL)
	if store.HasPosition("bitcoin") {
		t.Error("closed position still reported as held")
	}
	if store.HasPosition("ethereum") {
		t.Error("unknown subject reported as held")
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore()

	sig := longSignal() // rr 1.6
	winner := store.AddPosition(testAsset(), sig, nil)
	loser := store.AddPosition(models.CryptoAsset{ID: "ethereum", Symbol: "ETH"}, sig, nil)
	store.AddPosition(models.CryptoAsset{ID: "solana", Symbol: "SOL"}, sig, nil)

	store.UpdatePositionStatus(winner.ID, models.PositionActive, "")
	store.UpdatePositionStatus(winner.ID, models.PositionClosed, models.TargetTP1)
	store.UpdatePositionStatus(loser.ID, models.PositionActive, "")
	store.UpdatePositionStatus(loser.ID, models.PositionClosed, models.TargetSL)

	stats := store.GetStats()
	if stats.TotalPositions != 3 {
		t.Errorf("totalPositions = %d, want 3", stats.TotalPositions)
	}
	if stats.PendingPositions != 1 || stats.ActivePositions != 0 {
		t.Errorf("pending/active = %d/%d, want 1/0", stats.PendingPositions, stats.ActivePositions)
	}
	if stats.WinRate != 50 {
		t.Errorf("winRate = %d, want 50 (1 win of 2 closed)", stats.WinRate)
	}
	if stats.AvgRiskReward != 1.6 {
		t.Errorf("avgRiskReward = %v, want 1.6", stats.AvgRiskReward)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	stats := newTestStore().GetStats()
	if stats.WinRate != 0 {
		t.Errorf("winRate = %d on empty store, want 0", stats.WinRate)
	}
	if stats.AvgRiskReward != 0 {
		t.Errorf("avgRiskReward = %v on empty store, want 0", stats.AvgRiskReward)
	}
}

func TestCheckSignalStatusLong(t *testing.T) {
	pos := models.TradingPosition{Signal: longSignal()}

	cases := []struct {
		price    float64
		status   models.SignalStatus
		distance float64
	}{
		{108, models.StatusTP1Hit, 8},
		{115, models.StatusTP2Hit, 15},
		{94, models.StatusSLHit, -6},
		{101, models.StatusEntryZone, 1},
		{104, models.StatusWaiting, 4},
	}
	for _, tc := range cases {
		got := CheckSignalStatus(pos, tc.price)
		if got.Status != tc.status {
			t.Errorf("price %v: status = %q, want %q", tc.price, got.Status, tc.status)
		}
		if got.PriceDistance != tc.distance {
			t.Errorf("price %v: distance = %v, want %v", tc.price, got.PriceDistance, tc.distance)
		}
	}
}

func TestCheckSignalStatusShort(t *testing.T) {
	pos := models.TradingPosition{Signal: models.TradingSignal{
		Direction:   models.DirectionShort,
		EntryPrice:  100,
		StopLoss:    105,
		TakeProfit1: 92,
		TakeProfit2: 85,
	}}

	cases := []struct {
		price  float64
		status models.SignalStatus
	}{
		{92, models.StatusTP1Hit},
		{85, models.StatusTP2Hit},
		{106, models.StatusSLHit},
		{99, models.StatusEntryZone},
		{96, models.StatusWaiting},
	}
	for _, tc := range cases {
		if got := CheckSignalStatus(pos, tc.price); got.Status != tc.status {
			t.Errorf("price %v: status = %q, want %q", tc.price, got.Status, tc.status)
		}
	}
}

func TestCheckSignalStatusTargetPrecedence(t *testing.T) {
	// TP2 wins when both targets are crossed in one move.
	pos := models.TradingPosition{Signal: longSignal()}
	if got := CheckSignalStatus(pos, 200); got.Status != models.StatusTP2Hit {
		t.Errorf("status = %q at 200, want tp2_hit", got.Status)
	}
}

func TestSignalEditorRecomputesRiskReward(t *testing.T) {
	store := newTestStore()
	editor := NewSignalEditor(store)
	pos := store.AddPosition(testAsset(), longSignal(), nil)

	edited := longSignal()
	edited.StopLoss = 90
	edited.TakeProfit1 = 120
	edited.RiskRewardRatio = 999 // editor must overwrite

	if !editor.EditSignal(pos.ID, edited) {
		t.Fatal("EditSignal returned false for known id")
	}

	got, _ := store.GetPosition(pos.ID)
	if got.Signal.RiskRewardRatio != 2 {
		t.Errorf("riskRewardRatio = %v, want 2 (20/10)", got.Signal.RiskRewardRatio)
	}
	if !got.IsManuallyEdited || !got.IsVerified {
		t.Errorf("edit flags = %v/%v, want true/true", got.IsManuallyEdited, got.IsVerified)
	}
}

func TestRiskRewardZeroRiskFallback(t *testing.T) {
	if got := RiskReward(100, 100, 120); got != 1 {
		t.Errorf("RiskReward with entry == stopLoss = %v, want fallback 1", got)
	}
}

func TestRiskRewardRounding(t *testing.T) {
	if got := RiskReward(100, 97, 108); got != 2.67 {
		t.Errorf("RiskReward = %v, want 2.67", got)
	}
}
