// Package window provides bounded retention of recent timestamped events.
package window

import "time"

// DefaultMaxCount caps how many events a store retains regardless of age.
const DefaultMaxCount = 10000

// Timed is any event carrying its own timestamp.
type Timed interface {
	At() time.Time
}

// Store keeps events in arrival order, evicting from the front by age and
// count. Insertion order is primary; timestamps are assumed non-decreasing
// from a single source, and an occasional out-of-order timestamp only affects
// windowing math, never eviction correctness.
//
// The store is not safe for concurrent use. The analysis scheduler is the
// sole caller of both Append and Window; producers hand events off through
// the ingestion queue instead of touching the store.
type Store[E Timed] struct {
	events    []E
	maxCount  int
	retention time.Duration
}

// New constructs a store with the given count cap and age bound.
// A non-positive maxCount falls back to DefaultMaxCount.
func New[E Timed](maxCount int, retention time.Duration) *Store[E] {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &Store[E]{
		maxCount:  maxCount,
		retention: retention,
	}
}

// Append inserts an event at the back and evicts from the front as needed.
func (s *Store[E]) Append(event E) {
	s.events = append(s.events, event)
	s.Evict(event.At())
}

// Evict removes events from the front while the store exceeds its count cap
// or the front event is older than the retention bound relative to now.
func (s *Store[E]) Evict(now time.Time) {
	drop := 0
	for drop < len(s.events) && len(s.events)-drop > s.maxCount {
		drop++
	}
	if s.retention > 0 {
		cutoff := now.Add(-s.retention)
		for drop < len(s.events) && s.events[drop].At().Before(cutoff) {
			drop++
		}
	}
	if drop == 0 {
		return
	}
	remaining := len(s.events) - drop
	copy(s.events, s.events[drop:])
	// Clear the tail so evicted events do not linger in the backing array.
	var zero E
	for i := remaining; i < len(s.events); i++ {
		s.events[i] = zero
	}
	s.events = s.events[:remaining]
}

// Window returns the events with timestamp >= now - span, oldest first.
// The returned slice is a copy; callers may hold it across ticks.
func (s *Store[E]) Window(now time.Time, span time.Duration) []E {
	s.Evict(now)
	cutoff := now.Add(-span)
	start := len(s.events)
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].At().Before(cutoff) {
			break
		}
		start = i
	}
	if start == len(s.events) {
		return nil
	}
	out := make([]E, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// Len reports how many events the store currently retains.
func (s *Store[E]) Len() int {
	return len(s.events)
}
