package metrics

import (
	"sync"
	"sync/atomic"
)

// MaxTpsSamples bounds the in-memory TPS sample ring.
const MaxTpsSamples = 3600

// TpsSample is one second's observed transaction rate.
type TpsSample struct {
	TimestampMs int64
	Tps         int64
}

// TpsSampler combines request counting and per-second rate sampling into
// one component: Count is called once per completed request, UpdateTps is
// called once per second by the controller's rate-update scheduler and
// both resets the counter and appends a sample to the bounded ring.
type TpsSampler struct {
	requestsLastSecond atomic.Int64
	currentTps         atomic.Int64

	mu      sync.Mutex
	samples []TpsSample
	next    int
	size    int
}

// NewTpsSampler creates a sampler with a ring of MaxTpsSamples capacity.
func NewTpsSampler() *TpsSampler {
	return &TpsSampler{samples: make([]TpsSample, MaxTpsSamples)}
}

// Count records one completed request.
func (t *TpsSampler) Count() {
	t.requestsLastSecond.Add(1)
}

// UpdateTps atomically reads-and-resets the last-second counter, updates
// CurrentTps, and appends a sample to the ring, evicting the oldest
// sample once full.
func (t *TpsSampler) UpdateTps(timestampMs int64) int64 {
	tps := t.requestsLastSecond.Swap(0)
	t.currentTps.Store(tps)

	t.mu.Lock()
	t.samples[t.next] = TpsSample{TimestampMs: timestampMs, Tps: tps}
	t.next = (t.next + 1) % MaxTpsSamples
	if t.size < MaxTpsSamples {
		t.size++
	}
	t.mu.Unlock()

	return tps
}

// CurrentTps returns the most recently published TPS value.
func (t *TpsSampler) CurrentTps() int64 {
	return t.currentTps.Load()
}

// Samples returns a copy of all retained samples in chronological order.
func (t *TpsSampler) Samples() []TpsSample {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TpsSample, t.size)
	start := (t.next - t.size + MaxTpsSamples) % MaxTpsSamples
	for i := 0; i < t.size; i++ {
		out[i] = t.samples[(start+i)%MaxTpsSamples]
	}
	return out
}

// MaxTps returns the highest sampled TPS, 0 if empty.
func (t *TpsSampler) MaxTps() int64 {
	samples := t.Samples()
	if len(samples) == 0 {
		return 0
	}
	max := samples[0].Tps
	for _, s := range samples[1:] {
		if s.Tps > max {
			max = s.Tps
		}
	}
	return max
}

// MinTps returns the lowest sampled TPS, 0 if empty.
func (t *TpsSampler) MinTps() int64 {
	samples := t.Samples()
	if len(samples) == 0 {
		return 0
	}
	min := samples[0].Tps
	for _, s := range samples[1:] {
		if s.Tps < min {
			min = s.Tps
		}
	}
	return min
}

// AverageTps returns the mean sampled TPS, 0 if empty.
func (t *TpsSampler) AverageTps() float64 {
	samples := t.Samples()
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, s := range samples {
		sum += s.Tps
	}
	return float64(sum) / float64(len(samples))
}

// Reset clears the counter, current rate, and sample ring.
func (t *TpsSampler) Reset() {
	t.requestsLastSecond.Store(0)
	t.currentTps.Store(0)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.next = 0
	t.size = 0
}
