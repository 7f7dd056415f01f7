package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fastprodman/coinledger/internal/infra/metrics"
)

// Dispatcher decouples the ledger from its sinks: Emit enqueues and returns,
// a single worker delivers to the downstream sink. When the buffer is full
// the event is dropped and counted.
type Dispatcher struct {
	next Sink
	ch   chan Event
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(next Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		next: next,
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}

	go d.run()

	return d
}

func (d *Dispatcher) Emit(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.Events().Dropped()
		return
	}

	select {
	case d.ch <- e:
	default:
		metrics.Events().Dropped()
		slog.Warn("event dropped, dispatch buffer full", "event", e.Name, "identity", e.Identity)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for e := range d.ch {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	defer func() {
		r := recover()
		if r != nil {
			slog.Error("event sink panicked", "event", e.Name, "panic", fmt.Sprint(r))
		}
	}()

	d.next.Emit(e)
}

// Close stops accepting events and waits until the buffered ones are
// delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}
