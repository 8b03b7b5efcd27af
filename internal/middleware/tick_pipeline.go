package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
)

// TickProc is the minimal downstream interface the pipeline needs.
type TickProc interface {
	Process(ctx context.Context, t *models.PriceTick) error
}

// TickPipeline sits between the WebSocket price feed and position
// evaluation. It validates ticks, throttles per symbol, and buffers when the
// downstream processor is failing so a transient outage does not drop the
// whole stream.
type TickPipeline struct {
	proc    TickProc
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.PriceTick
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// per-symbol token buckets for throttling
	lastSeen map[string]time.Time
	tokens   map[string]float64
}

type TickPipelineOption func(*TickPipeline)

// WithMaxRPS sets the max accepted ticks per second per symbol.
func WithMaxRPS(n int) TickPipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) TickPipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewTickPipeline(proc TickProc, metrics domrepo.Metrics, opts ...TickPipelineOption) *TickPipeline {
	p := &TickPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   10,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
		tokens:   make(map[string]float64),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.PriceTick, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *TickPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.proc.Process(ctx, t); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.recordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- t:
					default:
						p.recordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop halts background flushing.
func (p *TickPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and throttles a tick, forwards it downstream, and buffers
// it for retry when the processor errors. Throttled ticks are dropped
// silently; price evaluation only needs a recent price, not every quote.
func (p *TickPipeline) Process(ctx context.Context, t *models.PriceTick) error {
	now := time.Now()
	if err := validateTick(t); err != nil {
		p.recordError("pipeline_validate")
		return err
	}
	if !p.allow(t.Symbol, now) {
		p.recordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, t); err != nil {
		p.recordError("pipeline_process")
		select {
		case p.bufCh <- t:
		default:
			p.recordError("pipeline_buffer_drop")
		}
		return err
	}
	return nil
}

// allow implements a per-symbol token bucket at maxRPS.
func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	tokens, ok := p.tokens[symbol]
	if !ok {
		tokens = float64(p.maxRPS)
	} else {
		elapsed := now.Sub(p.lastSeen[symbol]).Seconds()
		tokens += elapsed * float64(p.maxRPS)
		if tokens > float64(p.maxRPS) {
			tokens = float64(p.maxRPS)
		}
	}
	p.lastSeen[symbol] = now

	if tokens < 1 {
		p.tokens[symbol] = tokens
		return false
	}
	p.tokens[symbol] = tokens - 1
	return true
}

func (p *TickPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func validateTick(t *models.PriceTick) error {
	if t == nil {
		return fmt.Errorf("nil tick")
	}
	if t.Symbol == "" {
		return fmt.Errorf("tick missing symbol")
	}
	if t.Price <= 0 {
		return fmt.Errorf("tick for %s has non-positive price %v", t.Symbol, t.Price)
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("tick for %s has invalid timestamp %d", t.Symbol, t.Timestamp)
	}
	return nil
}
