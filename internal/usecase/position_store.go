package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
	applogger "CryptoBooster/pkg/logger"
)

// entryZonePct is the tolerance (percent from entry) that counts as being in
// the entry zone during live evaluation.
const entryZonePct = 2.0

// legalTransitions is the explicit position state machine. closed and
// cancelled are terminal; anything not listed is rejected.
var legalTransitions = map[models.PositionStatus][]models.PositionStatus{
	models.PositionPending: {models.PositionActive, models.PositionCancelled},
	models.PositionActive:  {models.PositionClosed},
}

// PositionStore owns the trading positions of one user context. It is the
// sole writer of position state: every mutation is serialized, applied in
// full, and then announced exactly once to subscribers with a snapshot of the
// whole set. Construct one store per session; it is not a process singleton.
type PositionStore struct {
	mu        sync.Mutex
	positions []models.TradingPosition // newest first
	subs      map[int]func([]models.TradingPosition)
	eventSubs map[int]func(models.PositionEvent)
	nextSub   int
	seq       uint64
	userID    string
	epoch     uint64

	archive domrepo.PositionArchive // optional
	metrics domrepo.Metrics
	logger  *applogger.Logger
	nowFn   func() time.Time
}

// NewPositionStore creates an empty store. archive may be nil (memory-only).
func NewPositionStore(archive domrepo.PositionArchive, metrics domrepo.Metrics, lgr *applogger.Logger) *PositionStore {
	return &PositionStore{
		subs:      make(map[int]func([]models.TradingPosition)),
		eventSubs: make(map[int]func(models.PositionEvent)),
		archive:   archive,
		metrics:   metrics,
		logger:    lgr,
		nowFn:     time.Now,
	}
}

// SetCurrentUser switches the user context: the in-memory set is discarded
// immediately and the archived set of the new user is loaded in the
// background. Loads are keyed by an epoch token so a stale response arriving
// after a newer switch is ignored.
func (s *PositionStore) SetCurrentUser(ctx context.Context, userID string) {
	s.mu.Lock()
	s.userID = userID
	s.epoch++
	epoch := s.epoch
	s.positions = nil
	s.mu.Unlock()
	s.notify()

	if s.archive == nil || userID == "" {
		return
	}
	go s.loadForUser(ctx, userID, epoch)
}

func (s *PositionStore) loadForUser(ctx context.Context, userID string, epoch uint64) {
	loaded, err := s.archive.LoadPositions(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("position reload failed", applogger.String("user", userID), applogger.Error(err))
		}
		s.recordError("position_reload")
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// a newer user context won the race; drop the stale load
		s.mu.Unlock()
		return
	}
	s.positions = loaded
	s.mu.Unlock()
	s.notify()
}

// AddPosition creates a pending position from subject metadata and a signal.
func (s *PositionStore) AddPosition(crypto models.CryptoAsset, signal models.TradingSignal, analysis *models.AnalysisResult) models.TradingPosition {
	s.mu.Lock()
	now := s.nowFn()
	s.seq++
	pos := models.TradingPosition{
		ID:              fmt.Sprintf("pos_%d_%06d", now.UnixMilli(), s.seq),
		CryptoID:        crypto.ID,
		CryptoSymbol:    crypto.Symbol,
		CryptoName:      crypto.Name,
		CryptoImage:     crypto.Image,
		Signal:          signal,
		PatternAnalysis: analysis,
		Status:          models.PositionPending,
		TargetHit:       models.TargetNone,
		AddedAt:         now,
	}
	s.positions = append([]models.TradingPosition{pos}, s.positions...)
	s.mu.Unlock()

	s.afterMutation(models.EventPositionAdded, pos)
	return pos
}

// RemovePosition deletes a position by id. Returns false (and stays silent)
// when the id is unknown.
func (s *PositionStore) RemovePosition(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.positions[idx]
	s.positions = append(s.positions[:idx], s.positions[idx+1:]...)
	s.mu.Unlock()

	s.afterMutation(models.EventPositionRemoved, removed)
	return true
}

// UpdatePositionStatus applies a status transition. Illegal moves per the
// state machine are rejected: the call returns false and no notification
// fires, same as an unknown id.
func (s *PositionStore) UpdatePositionStatus(id string, status models.PositionStatus, targetHit models.TargetHit) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	if !transitionAllowed(s.positions[idx].Status, status) {
		cur := s.positions[idx].Status
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("illegal status transition rejected",
				applogger.String("position", id),
				applogger.String("from", string(cur)),
				applogger.String("to", string(status)))
		}
		s.recordError("illegal_transition")
		return false
	}
	s.positions[idx].Status = status
	if targetHit != "" {
		s.positions[idx].TargetHit = targetHit
	}
	updated := s.positions[idx]
	s.mu.Unlock()

	s.afterMutation(models.EventStatusChanged, updated)
	return true
}

// UpdatePositionNotes replaces the free-form notes of a position.
func (s *PositionStore) UpdatePositionNotes(id, notes string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.positions[idx].Notes = notes
	updated := s.positions[idx]
	s.mu.Unlock()

	s.afterMutation(models.EventNotesUpdated, updated)
	return true
}

// UpdatePositionSignal overwrites the embedded signal. Recomputing the
// risk/reward ratio and setting the edit flags is the signal editor's job;
// the store applies what it is handed.
func (s *PositionStore) UpdatePositionSignal(id string, signal models.TradingSignal, manuallyEdited, verified bool) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.positions[idx].Signal = signal
	s.positions[idx].IsManuallyEdited = manuallyEdited
	s.positions[idx].IsVerified = verified
	updated := s.positions[idx]
	s.mu.Unlock()

	s.afterMutation(models.EventSignalUpdated, updated)
	return true
}

// GetPosition returns a snapshot of one position.
func (s *PositionStore) GetPosition(id string) (models.TradingPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.TradingPosition{}, false
	}
	return s.positions[idx], true
}

// GetAllPositions returns a snapshot of the whole set, newest first.
func (s *PositionStore) GetAllPositions() []models.TradingPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// GetPositionsByCrypto returns snapshots of all positions for a subject id.
func (s *PositionStore) GetPositionsByCrypto(cryptoID string) []models.TradingPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TradingPosition, 0)
	for _, p := range s.positions {
		if p.CryptoID == cryptoID {
			out = append(out, p)
		}
	}
	return out
}

// GetOpenPositionsBySymbol returns pending/active positions for a ticker
// symbol, used by the live price watcher.
func (s *PositionStore) GetOpenPositionsBySymbol(symbol string) []models.TradingPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TradingPosition, 0)
	for _, p := range s.positions {
		if p.CryptoSymbol != symbol {
			continue
		}
		if p.Status == models.PositionPending || p.Status == models.PositionActive {
			out = append(out, p)
		}
	}
	return out
}

// HasPosition reports whether the subject has a position that is still open
// (pending or active).
func (s *PositionStore) HasPosition(cryptoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.positions {
		if p.CryptoID != cryptoID {
			continue
		}
		if p.Status != models.PositionClosed && p.Status != models.PositionCancelled {
			return true
		}
	}
	return false
}

// GetStats aggregates the current set. Win rate counts closed positions whose
// target hit was tp1 or tp2; the average risk/reward spans every position.
func (s *PositionStore) GetStats() models.PositionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.positions)
	var active, pending, closed, wins int
	var rrSum float64
	for _, p := range s.positions {
		switch p.Status {
		case models.PositionActive:
			active++
		case models.PositionPending:
			pending++
		case models.PositionClosed:
			closed++
			if p.TargetHit == models.TargetTP1 || p.TargetHit == models.TargetTP2 {
				wins++
			}
		}
		rrSum += p.Signal.RiskRewardRatio
	}

	winRate := 0.0
	if closed > 0 {
		winRate = float64(wins) / float64(closed) * 100
	}
	avgRR := rrSum / math.Max(1, float64(total))

	return models.PositionStats{
		TotalPositions:   total,
		ActivePositions:  active,
		PendingPositions: pending,
		WinRate:          int(math.Round(winRate)),
		AvgRiskReward:    round2(avgRR),
	}
}

// ClearAllPositions empties the store.
func (s *PositionStore) ClearAllPositions() {
	s.mu.Lock()
	s.positions = nil
	s.mu.Unlock()
	s.afterMutation(models.EventPositionsClear, models.TradingPosition{})
}

// Subscribe registers a callback invoked with a snapshot of the full position
// list after every mutation. The callback fires once immediately with the
// current state. The returned function unsubscribes.
func (s *PositionStore) Subscribe(fn func([]models.TradingPosition)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SubscribeEvents registers a per-mutation event callback (used by the Kafka
// publisher). No immediate replay; only future mutations are delivered.
func (s *PositionStore) SubscribeEvents(fn func(models.PositionEvent)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.eventSubs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.eventSubs, id)
		s.mu.Unlock()
	}
}

// CheckSignalStatus evaluates a position against the current price. Pure and
// stateless: nothing is cached between calls.
func CheckSignalStatus(pos models.TradingPosition, currentPrice float64) models.SignalCheck {
	sig := pos.Signal
	priceDistance := 0.0
	if sig.EntryPrice != 0 {
		priceDistance = (currentPrice - sig.EntryPrice) / sig.EntryPrice * 100
	}

	if sig.Direction == models.DirectionLong {
		switch {
		case currentPrice >= sig.TakeProfit2:
			return models.SignalCheck{Status: models.StatusTP2Hit, PriceDistance: priceDistance}
		case currentPrice >= sig.TakeProfit1:
			return models.SignalCheck{Status: models.StatusTP1Hit, PriceDistance: priceDistance}
		case currentPrice <= sig.StopLoss:
			return models.SignalCheck{Status: models.StatusSLHit, PriceDistance: priceDistance}
		}
	} else {
		switch {
		case currentPrice <= sig.TakeProfit2:
			return models.SignalCheck{Status: models.StatusTP2Hit, PriceDistance: priceDistance}
		case currentPrice <= sig.TakeProfit1:
			return models.SignalCheck{Status: models.StatusTP1Hit, PriceDistance: priceDistance}
		case currentPrice >= sig.StopLoss:
			return models.SignalCheck{Status: models.StatusSLHit, PriceDistance: priceDistance}
		}
	}

	if math.Abs(priceDistance) <= entryZonePct {
		return models.SignalCheck{Status: models.StatusEntryZone, PriceDistance: priceDistance}
	}
	return models.SignalCheck{Status: models.StatusWaiting, PriceDistance: priceDistance}
}

func transitionAllowed(from, to models.PositionStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *PositionStore) indexLocked(id string) int {
	for i, p := range s.positions {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *PositionStore) snapshotLocked() []models.TradingPosition {
	out := make([]models.TradingPosition, len(s.positions))
	copy(out, s.positions)
	return out
}

// afterMutation delivers the snapshot to list subscribers and the change
// event to event subscribers, then refreshes the position gauges. Called
// exactly once per successful mutation.
func (s *PositionStore) afterMutation(eventType string, pos models.TradingPosition) {
	s.mu.Lock()
	ev := models.PositionEvent{Type: eventType, UserID: s.userID, Position: pos, At: s.nowFn()}
	eventSubs := make([]func(models.PositionEvent), 0, len(s.eventSubs))
	for _, fn := range s.eventSubs {
		eventSubs = append(eventSubs, fn)
	}
	s.mu.Unlock()

	s.notify()
	for _, fn := range eventSubs {
		fn(ev)
	}
	s.updateGauges()
}

func (s *PositionStore) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func([]models.TradingPosition), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *PositionStore) updateGauges() {
	if s.metrics == nil {
		return
	}
	s.mu.Lock()
	counts := map[models.PositionStatus]int{}
	for _, p := range s.positions {
		counts[p.Status]++
	}
	s.mu.Unlock()

	for _, st := range []models.PositionStatus{models.PositionPending, models.PositionActive, models.PositionClosed, models.PositionCancelled} {
		s.metrics.SetPositionCount(string(st), float64(counts[st]))
	}
}

func (s *PositionStore) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
