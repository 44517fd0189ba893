package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Stats is the delivery accounting of a Dispatcher. Every event handed to
// Emit ends up in exactly one of Delivered or Dropped once Close returns.
type Stats struct {
	Delivered uint64
	Issued    uint64
	Rejected  uint64
	Dropped   uint64
}

// Dispatcher asynchronously forwards issuance events to a sink.
//
// A nil *Dispatcher is valid: Emit and Close are no-ops.
type Dispatcher struct {
	cfg  Config
	sink Sink
	ch   chan Event
	done chan struct{}
	wg   sync.WaitGroup

	// mu is held shared by senders and exclusively by Close while it flips
	// closed, so no send can land after the drain.
	mu     sync.RWMutex
	closed bool

	issued   atomic.Uint64
	rejected atomic.Uint64
	dropped  atomic.Uint64

	closeOnce sync.Once
	final     Stats
}

// NewDispatcher starts the delivery goroutine. It returns nil when auditing is
// disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	d.sink.Emit(context.Background(), event)
	if event.EventType == EventTokenIssued {
		d.issued.Add(1)
	} else {
		d.rejected.Add(1)
	}
}

// Emit queues event, stamping Timestamp when it is zero. With DropIfFull a
// full buffer drops the event; otherwise Emit blocks until there is space or
// ctx is done, and a cancelled wait counts as a drop. Events emitted after
// Close are dropped too.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
}

// Close stops accepting events, waits until everything queued reached the
// sink and returns the final accounting. Later calls return the same Stats.
func (d *Dispatcher) Close() Stats {
	if d == nil {
		return Stats{}
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		close(d.done)
		d.wg.Wait()
		d.final = d.Stats()
	})
	return d.final
}

// Stats returns the current accounting.
func (d *Dispatcher) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	issued, rejected := d.issued.Load(), d.rejected.Load()
	return Stats{
		Delivered: issued + rejected,
		Issued:    issued,
		Rejected:  rejected,
		Dropped:   d.dropped.Load(),
	}
}

// Dropped returns how many events were discarded under backpressure or
// after Close.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
