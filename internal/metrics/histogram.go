package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/codahale/hdrhistogram"
)

const (
	histogramMaxValueMs = 3_600_000 // 1 hour
	histogramSigDigits  = 3
)

// LatencyHistogram records millisecond-resolution durations into an HDR
// histogram and exposes a point-in-time snapshot for lock-free percentile
// reads. Recording and snapshotting are independent: values recorded
// between snapshots are only visible to readers after the next
// UpdateSnapshot call.
type LatencyHistogram struct {
	activeMu    sync.Mutex
	active      *hdrhistogram.Histogram
	accumulated *hdrhistogram.Histogram // only touched from UpdateSnapshot/Reset
	snapshot    atomic.Value            // holds *histogramSnapshot
}

type histogramSnapshot struct {
	count   int64
	mean    float64
	stddev  float64
	valueAt func(quantile float64) int64
}

// NewLatencyHistogram creates an empty histogram over [0, 1h] with 3
// significant digits.
func NewLatencyHistogram() *LatencyHistogram {
	h := &LatencyHistogram{
		active:      hdrhistogram.New(0, histogramMaxValueMs, histogramSigDigits),
		accumulated: hdrhistogram.New(0, histogramMaxValueMs, histogramSigDigits),
	}
	h.snapshot.Store(snapshotOf(h.accumulated))
	return h
}

// Record adds one value in milliseconds, clamped to the histogram's range.
func (h *LatencyHistogram) Record(valueMs int64) {
	if valueMs > histogramMaxValueMs {
		valueMs = histogramMaxValueMs
	}
	if valueMs < 0 {
		valueMs = 0
	}
	h.activeMu.Lock()
	h.active.RecordValue(valueMs)
	h.activeMu.Unlock()
}

// UpdateSnapshot merges everything recorded since the last call into the
// accumulated histogram and publishes a fresh snapshot for readers.
// The controller calls it once per second and once more at the end of a run.
func (h *LatencyHistogram) UpdateSnapshot() {
	h.activeMu.Lock()
	h.accumulated.Merge(h.active)
	h.active.Reset()
	h.activeMu.Unlock()

	h.snapshot.Store(snapshotOf(h.accumulated))
}

// snapshotOf copies h via Export/Import so the returned snapshot is safe
// to query from readers while h keeps mutating under later Merge calls.
func snapshotOf(h *hdrhistogram.Histogram) *histogramSnapshot {
	frozen := hdrhistogram.Import(h.Export())
	count := frozen.TotalCount()
	s := &histogramSnapshot{count: count, valueAt: frozen.ValueAtQuantile}
	if count > 0 {
		s.mean = frozen.Mean()
		s.stddev = frozen.StdDev()
	}
	return s
}

func (h *LatencyHistogram) current() *histogramSnapshot {
	return h.snapshot.Load().(*histogramSnapshot)
}

// Percentile returns the value at the given percentile (0-100) from the
// latest snapshot, or 0 if nothing has been recorded yet.
func (h *LatencyHistogram) Percentile(p float64) int64 {
	s := h.current()
	if s.count == 0 {
		return 0
	}
	return s.valueAt(p)
}

// Count returns the total number of values in the latest snapshot.
func (h *LatencyHistogram) Count() int64 { return h.current().count }

// Min returns the smallest recorded value in the latest snapshot, 0 if
// nothing has been recorded yet.
func (h *LatencyHistogram) Min() int64 { return h.Percentile(0) }

// Max returns the largest recorded value in the latest snapshot, 0 if
// nothing has been recorded yet.
func (h *LatencyHistogram) Max() int64 { return h.Percentile(100) }

// Mean returns the mean of the latest snapshot, 0 if empty.
func (h *LatencyHistogram) Mean() float64 { return h.current().mean }

// StdDev returns the standard deviation of the latest snapshot, 0 if empty.
func (h *LatencyHistogram) StdDev() float64 { return h.current().stddev }

// Reset clears both the active and accumulated histograms and republishes
// an empty snapshot.
func (h *LatencyHistogram) Reset() {
	h.activeMu.Lock()
	h.active.Reset()
	h.accumulated.Reset()
	h.activeMu.Unlock()

	h.snapshot.Store(snapshotOf(h.accumulated))
}
