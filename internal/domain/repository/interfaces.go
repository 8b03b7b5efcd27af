package repository

import (
	"context"

	"CryptoBooster/internal/domain/models"
)

// MarketDataSource provides raw market history. A failed fetch returns an
// error; "no data" is a nil error with an empty slice.
type MarketDataSource interface {
	// FetchOHLC returns native candles for the lookback window in days.
	FetchOHLC(ctx context.Context, coinID string, days int) ([]models.OHLCPoint, error)
	// FetchPrices returns raw price samples. interval is an optional source
	// hint ("daily" for coarse series); empty means source default.
	FetchPrices(ctx context.Context, coinID string, days int, interval string) ([]models.PricePoint, error)
}

// PriceStream is a live quote feed driving position status evaluation.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits position change events to the configured broker.
type Publisher interface {
	Publish(ctx context.Context, ev *models.PositionEvent) error
	Close() error
}

// PositionArchive persists position events and serves the per-user position
// set on a user-context switch.
type PositionArchive interface {
	Init(ctx context.Context) error
	Archive(ctx context.Context, ev *models.PositionEventRecord) error
	LoadPositions(ctx context.Context, userID string) ([]models.TradingPosition, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics abstracts the operational metrics recorder.
type Metrics interface {
	RecordEventPublished(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	SetPositionCount(status string, n float64)
}
