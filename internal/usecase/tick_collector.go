package usecase

import (
	"context"
	"time"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
	mid "CryptoBooster/internal/middleware"
)

// TickCollector reads the live price stream and feeds it through the tick
// pipeline into the position watcher.
type TickCollector struct {
	stream  domrepo.PriceStream
	watcher *PositionWatcher
	metrics domrepo.Metrics
	pipe    *mid.TickPipeline

	retryDelay time.Duration
}

func NewTickCollector(stream domrepo.PriceStream, watcher *PositionWatcher, metrics domrepo.Metrics, pipe *mid.TickPipeline) *TickCollector {
	return &TickCollector{stream: stream, watcher: watcher, metrics: metrics, pipe: pipe, retryDelay: time.Second}
}

// IsConnected reports whether the price stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

// consume pumps ticks into the pipeline. The stream closes both channels
// after delivering an error, so every error or closure is followed by a
// reconnect and a fresh Read; the old tick channel is drained first so
// buffered prices are not lost.
func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.PriceTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err != nil && c.metrics != nil {
				c.metrics.RecordError("stream")
			}
			c.drain(ctx, tickCh)
			tickCh, errCh, ok = c.resume(ctx)
			if !ok {
				return
			}
		case t, ok := <-tickCh:
			if !ok {
				tickCh, errCh, ok = c.resume(ctx)
				if !ok {
					return
				}
				continue
			}
			c.handle(ctx, t)
		}
	}
}

// drain processes whatever is left on a dead stream's tick channel without
// blocking on it.
func (c *TickCollector) drain(ctx context.Context, tickCh <-chan *models.PriceTick) {
	for {
		select {
		case t, ok := <-tickCh:
			if !ok {
				return
			}
			c.handle(ctx, t)
		default:
			return
		}
	}
}

// resume re-dials the stream until it comes back and returns fresh channels.
func (c *TickCollector) resume(ctx context.Context) (<-chan *models.PriceTick, <-chan error, bool) {
	for {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			if c.metrics != nil {
				c.metrics.RecordError("stream_reconnect")
			}
			select {
			case <-ctx.Done():
				return nil, nil, false
			case <-time.After(c.retryDelay):
			}
			continue
		}
		tickCh, errCh := c.stream.Read(ctx)
		return tickCh, errCh, true
	}
}

func (c *TickCollector) handle(ctx context.Context, t *models.PriceTick) {
	if t == nil {
		return
	}
	if c.pipe != nil {
		_ = c.pipe.Process(ctx, t)
	} else {
		_ = c.watcher.Process(ctx, t)
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
