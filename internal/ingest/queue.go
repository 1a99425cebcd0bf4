// Package ingest provides the non-blocking hand-off between event producers
// and the analysis scheduler.
package ingest

import "sync/atomic"

// DefaultCapacity is the buffered size of a queue.
const DefaultCapacity = 4096

// Queue is a bounded single-consumer hand-off. Submit never blocks: when the
// buffer is full the event is dropped and counted, since the window store's
// age eviction makes capacity a soft cap rather than a failure.
type Queue[E any] struct {
	ch      chan E
	dropped atomic.Uint64
}

// NewQueue constructs a queue with the given capacity.
// A non-positive capacity falls back to DefaultCapacity.
func NewQueue[E any](capacity int) *Queue[E] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[E]{ch: make(chan E, capacity)}
}

// Submit hands an event to the consumer. It is safe to call from any
// goroutine, including hook callbacks, and returns immediately.
func (q *Queue[E]) Submit(event E) {
	select {
	case q.ch <- event:
	default:
		q.dropped.Add(1)
	}
}

// Drain delivers all currently queued events to fn in submission order.
// It returns the number of events delivered and never blocks.
func (q *Queue[E]) Drain(fn func(E)) int {
	n := 0
	for {
		select {
		case event := <-q.ch:
			fn(event)
			n++
		default:
			return n
		}
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (q *Queue[E]) Dropped() uint64 {
	return q.dropped.Load()
}
