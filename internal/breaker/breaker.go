// Package breaker implements a sliding-window failure-rate circuit
// breaker that halts request submission once the error rate exceeds a
// threshold.
package breaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Breaker trips open once a fixed-size window of recent results shows a
// failure rate above threshold. It never auto-closes; callers must
// explicitly Reset it.
type Breaker struct {
	window    int
	threshold float64

	mu       sync.RWMutex
	ring     []bool
	size     int
	next     int
	failures int

	open      atomic.Bool
	openSince atomic.Int64 // unix nanos, 0 when closed
}

// New creates a breaker with the given ring size (window) and failure-rate
// threshold in [0,1].
func New(window int, threshold float64) (*Breaker, error) {
	if window < 1 {
		return nil, fmt.Errorf("circuit breaker: window must be >= 1, got %d", window)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("circuit breaker: threshold must be in [0,1], got %v", threshold)
	}
	return &Breaker{window: window, threshold: threshold, ring: make([]bool, window)}, nil
}

// RecordResult appends a result to the window, evicting the oldest entry
// once full. Once the window is saturated, the breaker trips if the
// failure rate exceeds the threshold and it is not already open. The
// open-transition is stamped exactly once per continuous open period.
func (b *Breaker) RecordResult(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == b.window {
		if !b.ring[b.next] {
			b.failures--
		}
	} else {
		b.size++
	}
	b.ring[b.next] = success
	if !success {
		b.failures++
	}
	b.next = (b.next + 1) % b.window

	if b.size == b.window && !b.open.Load() {
		rate := float64(b.failures) / float64(b.window)
		if rate > b.threshold {
			if b.open.CompareAndSwap(false, true) {
				b.openSince.Store(time.Now().UnixNano())
			}
		}
	}
}

// AllowRequest reports whether the breaker is closed. Lock-free.
func (b *Breaker) AllowRequest() bool {
	return !b.open.Load()
}

// Reset clears the window and closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.ring {
		b.ring[i] = false
	}
	b.size = 0
	b.next = 0
	b.failures = 0
	b.open.Store(false)
	b.openSince.Store(0)
}

// CurrentErrorRate returns failures over the current window size, 0 when
// empty.
func (b *Breaker) CurrentErrorRate() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return 0
	}
	return float64(b.failures) / float64(b.size)
}

// OpenSince returns when the breaker last tripped open, or the zero time
// if it is currently closed.
func (b *Breaker) OpenSince() time.Time {
	ns := b.openSince.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
