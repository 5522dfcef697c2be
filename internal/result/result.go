// Package result assembles the immutable end-of-test snapshot handed to
// the exporters.
package result

import (
	"fmt"
	"time"

	"github.com/kunkun/tpsgen/internal/metrics"
)

// TestResult is the complete, immutable outcome of one load test run.
type TestResult struct {
	Name        string
	StartedAt   time.Time
	EndedAt     time.Time
	Counters    metrics.CounterSnapshot
	StatusCodes map[int]int64

	AverageTps float64
	MaxTps     int64
	MinTps     int64
	TpsSamples []metrics.TpsSample

	ResponseTimePercentiles     map[int]int64 // e.g. 50, 90, 95, 99 -> ms
	ResponseTimeMin             int64
	ResponseTimeMax             int64
	ResponseTimeMean            float64
	ResponseTimeStdDev          float64
	RateLimiterWaitPercentiles  map[int]int64
	RateLimiterWaitMin          int64
	RateLimiterWaitMax          int64
	RateLimiterWaitMean         float64

	ErrorReport metrics.Report

	TotalBytesSent     int64
	TotalBytesReceived int64
	ContentTypeCounts  map[string]int64

	MaxCpuPct         float64
	MaxMemUsedBytes   uint64
	ResourceSnapshots []metrics.ResourceSnapshot
}

// DurationMs returns the wall-clock run length in milliseconds.
func (r TestResult) DurationMs() int64 {
	return r.EndedAt.Sub(r.StartedAt).Milliseconds()
}

// DurationSeconds returns the wall-clock run length in seconds.
func (r TestResult) DurationSeconds() float64 {
	return float64(r.DurationMs()) / 1000.0
}

// SuccessRate returns successes over total, 0 when no requests were made.
func (r TestResult) SuccessRate() float64 {
	if r.Counters.Total == 0 {
		return 0
	}
	return float64(r.Counters.Success) / float64(r.Counters.Total)
}

// Summary renders a one-line human-readable result, matching the
// original's getSummary() format.
func (r TestResult) Summary() string {
	return fmt.Sprintf("Test: %s, Duration: %.2f seconds, Requests: %d, Success Rate: %.2f%%, Avg TPS: %.2f, P95 Response: %d ms",
		r.Name, r.DurationSeconds(), r.Counters.Total, r.SuccessRate()*100, r.AverageTps, r.ResponseTimePercentiles[95])
}
