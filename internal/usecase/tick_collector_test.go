package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CryptoBooster/internal/domain/models"
)

// flakyStream mimics the real WebSocket client's contract: the first Read
// delivers one error then closes both channels; subsequent Reads deliver
// ticks on live channels.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
}

func (s *flakyStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *flakyStream) Subscribe(context.Context) error { return nil }

func (s *flakyStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.reconnects++
	s.mu.Unlock()
	return s.Connect(ctx)
}

func (s *flakyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *flakyStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *flakyStream) Read(context.Context) (<-chan *models.PriceTick, <-chan error) {
	s.mu.Lock()
	s.reads++
	n := s.reads
	s.mu.Unlock()

	ticks := make(chan *models.PriceTick, 8)
	errs := make(chan error, 1)
	if n == 1 {
		errs <- errors.New("read: connection reset")
		close(ticks)
		close(errs)
	} else {
		ticks <- tick("BTC", 101)
	}
	return ticks, errs
}

func (s *flakyStream) counts() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

func TestCollectorResumesReadingAfterStreamError(t *testing.T) {
	store := newTestStore()
	pos := store.AddPosition(testAsset(), longSignal(), nil)
	stream := &flakyStream{}
	col := NewTickCollector(stream, NewPositionWatcher(store, nil, nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The first Read dies immediately; the entry-zone tick only arrives on
	// the post-reconnect channels.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := store.GetPosition(pos.ID); got.Status == models.PositionActive {
			reads, reconnects := stream.counts()
			if reads < 2 {
				t.Fatalf("tick processed after %d Read calls, want a fresh Read per reconnect", reads)
			}
			if reconnects != 1 {
				t.Errorf("reconnects = %d, want 1", reconnects)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("position never activated: tick flow did not resume after the stream error")
}

func TestCollectorStopsResumingOnContextCancel(t *testing.T) {
	store := newTestStore()
	stream := &flakyStream{}
	col := NewTickCollector(stream, NewPositionWatcher(store, nil, nil), nil, nil)
	col.retryDelay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	if err := col.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	time.Sleep(50 * time.Millisecond)
	reads, _ := stream.counts()
	time.Sleep(50 * time.Millisecond)
	readsAfter, _ := stream.counts()
	if readsAfter > reads+1 {
		t.Fatalf("collector kept re-dialing after cancel: %d -> %d reads", reads, readsAfter)
	}
}
