package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/lazyload/event"
)

var (
	// ErrQueueFull is returned by Async.Send when the event was dropped.
	ErrQueueFull = errors.New("sink: async queue full, event dropped")
	// ErrClosed is returned by Async.Send after Close.
	ErrClosed = errors.New("sink: async sink closed")
)

// Async delivers events to a wrapped sink from its own goroutine, so a slow
// backend (a webhook in backoff, a locked database) never holds up the
// caller. Send never blocks: when the queue is full the event is dropped.
type Async struct {
	next   Sink
	queue  chan event.Event
	drain  time.Duration
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// AsyncOption configures an Async sink.
type AsyncOption func(*Async)

// WithAsyncQueue sets how many events may wait for delivery. Default: 1024.
func WithAsyncQueue(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.queue = make(chan event.Event, n)
		}
	}
}

// WithAsyncDrain bounds how long Close waits for queued events before it
// cancels in-flight deliveries. Default: 2s.
func WithAsyncDrain(d time.Duration) AsyncOption {
	return func(a *Async) { a.drain = d }
}

// WithAsyncLogger sets a custom logger.
func WithAsyncLogger(l *slog.Logger) AsyncOption {
	return func(a *Async) { a.logger = l }
}

// NewAsync starts the delivery goroutine for next. Close stops it; next
// itself is not closed.
func NewAsync(next Sink, opts ...AsyncOption) *Async {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Async{
		next:   next,
		queue:  make(chan event.Event, 1024),
		drain:  2 * time.Second,
		logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	go a.run()
	return a
}

// Send queues ev. The caller's ctx is not passed on: delivery outlives it.
func (a *Async) Send(_ context.Context, ev event.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits for the queue to drain, at most
// the drain timeout. Deliveries still running after that are cancelled.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	t := time.NewTimer(a.drain)
	defer t.Stop()
	select {
	case <-a.done:
	case <-t.C:
		a.logger.Warn("sink: async drain timed out, cancelling", "pending", len(a.queue))
		a.cancel()
		<-a.done
	}
	a.cancel()
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		if err := a.next.Send(a.ctx, ev); err != nil {
			a.logger.Warn("sink: async delivery failed", "kind", ev.Kind, "error", err)
		}
	}
}
