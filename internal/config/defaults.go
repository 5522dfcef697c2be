package config

import "time"

// =============================================================================
// THREAD POOL DEFAULTS
// =============================================================================

// DefaultRequestTimeout bounds each individual HTTP call when the
// document omits requestTimeout.
const DefaultRequestTimeout = 30 * time.Second

const (
	// DefaultCoreSize is the steady-state worker count.
	DefaultCoreSize = 10

	// DefaultMaxSize is the ceiling the pool may grow to under load.
	DefaultMaxSize = 50

	// DefaultQueueSize is the bounded submission queue depth before the
	// caller-runs saturation policy kicks in.
	DefaultQueueSize = 1000

	// DefaultKeepAliveTime is how long an idle worker above core size lives.
	DefaultKeepAliveTime = 60 * time.Second
)

// =============================================================================
// METRICS AND RESOURCE MONITORING DEFAULTS
// =============================================================================

const (
	// DefaultResourceSampleInterval is how often the resource monitor samples.
	DefaultResourceSampleInterval = 1 * time.Second

	// GracefulShutdownTimeout is the max wait for in-flight work to drain.
	GracefulShutdownTimeout = 30 * time.Second
)

// DefaultResponseTimePercentiles are reported when the document omits them.
var DefaultResponseTimePercentiles = []int{50, 90, 95, 99}

// =============================================================================
// CIRCUIT BREAKER DEFAULTS
// =============================================================================

const (
	// DefaultErrorThreshold trips the breaker once the window's failure
	// rate exceeds this fraction.
	DefaultErrorThreshold = 0.5

	// DefaultWindowSize is the sliding window's sample count.
	DefaultWindowSize = 20
)

// DefaultSpec returns a TestSpec with every optional field populated,
// matching the original's compile-time-constants defaulting idiom.
// Required fields (name, targetServiceUrl, testDuration, trafficPattern,
// requestTemplates) are left zero-valued for the loaded document to fill in.
func DefaultSpec() *TestSpec {
	return &TestSpec{
		RequestTimeout: DefaultRequestTimeout,
		ThreadPool: ThreadPoolSpec{
			CoreSize:      DefaultCoreSize,
			MaxSize:       DefaultMaxSize,
			QueueSize:     DefaultQueueSize,
			KeepAliveTime: DefaultKeepAliveTime,
		},
		Metrics: MetricsSpec{
			ResponseTimePercentiles: append([]int(nil), DefaultResponseTimePercentiles...),
			ResourceMonitoring: ResourceMonitorSpec{
				Enabled:        true,
				SampleInterval: DefaultResourceSampleInterval,
			},
		},
		CircuitBreaker: CircuitBreakerSpec{
			Enabled:        false,
			ErrorThreshold: DefaultErrorThreshold,
			WindowSize:     DefaultWindowSize,
		},
	}
}
