package usecase

import (
	"context"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
	applogger "CryptoBooster/pkg/logger"
)

// PositionWatcher turns live price ticks into position lifecycle moves:
// a pending position activates when the price enters its entry zone, an
// active position closes when a target or the stop is hit.
type PositionWatcher struct {
	store   *PositionStore
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

func NewPositionWatcher(store *PositionStore, metrics domrepo.Metrics, lgr *applogger.Logger) *PositionWatcher {
	return &PositionWatcher{store: store, metrics: metrics, logger: lgr}
}

// Process evaluates every open position of the tick's symbol. Always returns
// nil: a tick that moves nothing is the common case, not an error.
func (w *PositionWatcher) Process(_ context.Context, t *models.PriceTick) error {
	if w.metrics != nil {
		w.metrics.RecordLastPrice(t.Symbol, t.Price)
	}

	for _, pos := range w.store.GetOpenPositionsBySymbol(t.Symbol) {
		check := CheckSignalStatus(pos, t.Price)
		w.apply(pos, check, t.Price)
	}
	return nil
}

func (w *PositionWatcher) apply(pos models.TradingPosition, check models.SignalCheck, price float64) {
	switch pos.Status {
	case models.PositionPending:
		if check.Status == models.StatusEntryZone {
			if w.store.UpdatePositionStatus(pos.ID, models.PositionActive, "") && w.logger != nil {
				w.logger.Info("position activated",
					applogger.String("position", pos.ID),
					applogger.String("symbol", pos.CryptoSymbol),
					applogger.Any("price", price))
			}
		}
	case models.PositionActive:
		var hit models.TargetHit
		switch check.Status {
		case models.StatusTP2Hit:
			hit = models.TargetTP2
		case models.StatusTP1Hit:
			hit = models.TargetTP1
		case models.StatusSLHit:
			hit = models.TargetSL
		default:
			return
		}
		if w.store.UpdatePositionStatus(pos.ID, models.PositionClosed, hit) && w.logger != nil {
			w.logger.Info("position closed",
				applogger.String("position", pos.ID),
				applogger.String("symbol", pos.CryptoSymbol),
				applogger.String("target", string(hit)),
				applogger.Any("price", price))
		}
	}
}
