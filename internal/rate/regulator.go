// Package rate paces request submission to a target TPS, wrapping
// golang.org/x/time/rate with a live-updatable limit.
package rate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// minRate is the floor applied to any requested rate; rate.Limiter treats
// zero or negative limits as "never allow", which would wedge Acquire
// forever.
const minRate = 1e-6

// Regulator paces Acquire calls to a target rate that can be changed
// concurrently via SetRate.
type Regulator struct {
	limiter *rate.Limiter
}

// NewRegulator creates a regulator with an initial rate in requests/second
// and a burst of one: permits do not accumulate beyond the most recent
// second.
func NewRegulator(initialTps float64) *Regulator {
	return &Regulator{limiter: rate.NewLimiter(rate.Limit(clamp(initialTps)), 1)}
}

// Acquire blocks until a permit is available or ctx is done, and returns
// how long it waited.
func (r *Regulator) Acquire(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// SetRate updates the target rate, effective immediately for future
// Acquire calls. In-flight waiters may observe either rate.
func (r *Regulator) SetRate(tps float64) {
	r.limiter.SetLimit(rate.Limit(clamp(tps)))
}

func clamp(tps float64) float64 {
	if tps < minRate {
		return minRate
	}
	return tps
}
