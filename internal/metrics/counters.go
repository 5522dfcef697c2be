package metrics

import (
	"sync"
	"sync/atomic"
)

// Counters holds the additive outcome counts for a run.
type Counters struct {
	Total    atomic.Int64
	Success  atomic.Int64
	Failure  atomic.Int64
	Timeout  atomic.Int64
	Skipped  atomic.Int64
}

// Snapshot captures the current counter values.
type CounterSnapshot struct {
	Total, Success, Failure, Timeout, Skipped int64
}

func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Total:   c.Total.Load(),
		Success: c.Success.Load(),
		Failure: c.Failure.Load(),
		Timeout: c.Timeout.Load(),
		Skipped: c.Skipped.Load(),
	}
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	c.Total.Store(0)
	c.Success.Store(0)
	c.Failure.Store(0)
	c.Timeout.Store(0)
	c.Skipped.Store(0)
}

// StatusCodeCounts tracks per-HTTP-status-code occurrence counts with
// lazy insertion.
type StatusCodeCounts struct {
	mu     sync.Mutex
	counts map[int]*atomic.Int64
}

// NewStatusCodeCounts creates an empty tracker.
func NewStatusCodeCounts() *StatusCodeCounts {
	return &StatusCodeCounts{counts: make(map[int]*atomic.Int64)}
}

// Record increments the counter for statusCode, creating it if absent.
func (s *StatusCodeCounts) Record(statusCode int) {
	s.mu.Lock()
	counter, ok := s.counts[statusCode]
	if !ok {
		counter = &atomic.Int64{}
		s.counts[statusCode] = counter
	}
	s.mu.Unlock()
	counter.Add(1)
}

// Count returns the count for a specific status code, 0 if never recorded.
func (s *StatusCodeCounts) Count(statusCode int) int64 {
	s.mu.Lock()
	counter, ok := s.counts[statusCode]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return counter.Load()
}

// All returns a copy of every recorded status code and its count.
func (s *StatusCodeCounts) All() map[int]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int64, len(s.counts))
	for code, counter := range s.counts {
		out[code] = counter.Load()
	}
	return out
}

// rangeTotal sums counts for status codes in [min, max).
func (s *StatusCodeCounts) rangeTotal(min, max int) int64 {
	var total int64
	for code, count := range s.All() {
		if code >= min && code < max {
			total += count
		}
	}
	return total
}

// SuccessCount sums all 2xx counts.
func (s *StatusCodeCounts) SuccessCount() int64 { return s.rangeTotal(200, 300) }

// ClientErrorCount sums all 4xx counts.
func (s *StatusCodeCounts) ClientErrorCount() int64 { return s.rangeTotal(400, 500) }

// ServerErrorCount sums all 5xx counts.
func (s *StatusCodeCounts) ServerErrorCount() int64 { return s.rangeTotal(500, 600) }

// TotalCount sums every recorded status code.
func (s *StatusCodeCounts) TotalCount() int64 {
	var total int64
	for _, count := range s.All() {
		total += count
	}
	return total
}

// HasErrors reports whether any status code >= 400 has been recorded.
func (s *StatusCodeCounts) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code := range s.counts {
		if code >= 400 {
			return true
		}
	}
	return false
}

// Reset clears all recorded counts.
func (s *StatusCodeCounts) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[int]*atomic.Int64)
}
