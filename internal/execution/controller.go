// Package execution implements the controller that owns a load test run:
// the rate-update scheduler, the bounded worker pool, the submission
// loop, and cooperative shutdown.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kunkun/tpsgen/internal/apperrors"
	"github.com/kunkun/tpsgen/internal/breaker"
	"github.com/kunkun/tpsgen/internal/metrics"
	"github.com/kunkun/tpsgen/internal/rate"
	"github.com/kunkun/tpsgen/internal/request"
	"github.com/kunkun/tpsgen/internal/result"
	"github.com/kunkun/tpsgen/internal/traffic"
	"github.com/kunkun/tpsgen/internal/validator"
)

// maxResponseBodyBytes bounds how much of a response body is read for
// validation and error sampling; larger bodies are truncated.
const maxResponseBodyBytes = 64 * 1024

func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBodyBytes))
}

// State is the controller's lifecycle stage.
type State int32

const (
	Created State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	defaultRequestTimeout = 30 * time.Second
	shutdownGrace         = 30 * time.Second
	rateTickPeriod        = time.Second
	progressEvery         = 10 * time.Second
	submissionPause       = time.Millisecond
)

// ThreadPoolConfig sizes the bounded worker pool.
type ThreadPoolConfig struct {
	CoreSize      int
	MaxSize       int
	QueueSize     int
	KeepAliveTime time.Duration
}

// Config bundles everything the controller needs to run one test.
type Config struct {
	Name        string
	TotalMs     int64
	ThreadPool  ThreadPoolConfig
	Profile     traffic.Profile
	Generator   *request.Generator
	Validator   *validator.Validator // optional, may be nil
	Breaker     *breaker.Breaker     // optional, may be nil
	HTTPClient  *http.Client
	Logf        func(format string, args ...any)

	// RequestTimeout bounds each individual request; defaults to 30s when
	// zero. Tests use a shorter value to keep suite runtime bounded while
	// still exercising the timeout classification path.
	RequestTimeout time.Duration

	// ResourceMonitorEnabled toggles the background CPU/memory sampler.
	ResourceMonitorEnabled bool
	// ResourceSampleInterval defaults to one second when zero.
	ResourceSampleInterval time.Duration

	// ResponseTimePercentiles overrides which percentiles buildResult
	// reports; defaults to {50, 90, 95, 99} when empty.
	ResponseTimePercentiles []int
}

// Controller orchestrates one load test run. An instance runs at most
// once; reuse after Stopped is rejected.
type Controller struct {
	cfg Config

	state   atomic.Int32
	ran     atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	regulator *rate.Regulator
	pool      *workerPool

	requestSeq atomic.Int64
	startedAt  time.Time

	counters         metrics.Counters
	statusCodes      *metrics.StatusCodeCounts
	tpsSampler       *metrics.TpsSampler
	responseTimes    *metrics.LatencyHistogram
	rateLimiterWaits *metrics.LatencyHistogram
	errors           *metrics.ErrorAnalyzer
	network          *metrics.NetworkMetrics
	resourceMonitor  *metrics.ResourceMonitor
}

// New builds a controller in the Created state.
func New(cfg Config) (*Controller, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("execution controller: generator is required")
	}
	if cfg.Profile == nil {
		return nil, fmt.Errorf("execution controller: traffic profile is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ResourceSampleInterval <= 0 {
		cfg.ResourceSampleInterval = time.Second
	}
	if len(cfg.ResponseTimePercentiles) == 0 {
		cfg.ResponseTimePercentiles = []int{50, 90, 95, 99}
	}

	initialTps := cfg.Profile.TpsAt(0, cfg.TotalMs)
	c := &Controller{
		cfg:              cfg,
		regulator:        rate.NewRegulator(initialTps),
		statusCodes:      metrics.NewStatusCodeCounts(),
		tpsSampler:       metrics.NewTpsSampler(),
		responseTimes:    metrics.NewLatencyHistogram(),
		rateLimiterWaits: metrics.NewLatencyHistogram(),
		errors:           metrics.NewErrorAnalyzer(),
		network:          metrics.NewNetworkMetrics(),
		resourceMonitor:  metrics.NewResourceMonitor(),
	}
	c.state.Store(int32(Created))
	return c, nil
}

// State returns the controller's current lifecycle stage.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Execute runs the test to completion (duration elapsed, circuit breaker
// tripped, or Stop() called) and returns the assembled result.
// Re-entry on an already-run instance fails fast.
func (c *Controller) Execute(ctx context.Context) (result.TestResult, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return result.TestResult{}, fmt.Errorf("%w: execution controller already ran", apperrors.ErrConfigInvalid)
	}
	c.state.Store(int32(Running))

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	defer close(c.done)

	c.startedAt = time.Now()
	c.pool = newWorkerPool(c.cfg.ThreadPool)

	if c.cfg.ResourceMonitorEnabled {
		c.resourceMonitor.Start(ctx, c.cfg.ResourceSampleInterval)
		defer c.resourceMonitor.Stop()
	}

	var schedWg sync.WaitGroup
	schedWg.Add(1)
	go func() {
		defer schedWg.Done()
		c.runRateScheduler(ctx)
	}()
	defer schedWg.Wait()

	c.submissionLoop(ctx)

	c.pool.shutdown(shutdownGrace)
	cancel()
	c.resourceMonitor.Stop()
	schedWg.Wait()

	c.responseTimes.UpdateSnapshot()
	c.rateLimiterWaits.UpdateSnapshot()

	c.state.Store(int32(Stopped))
	return c.buildResult(), nil
}

// Stop cancels the run from another goroutine without waiting for
// in-flight work to drain. Idempotent; a no-op unless currently running.
func (c *Controller) Stop() {
	if c.State() != Running {
		return
	}
	c.state.Store(int32(Stopping))
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) runRateScheduler(ctx context.Context) {
	ticker := time.NewTicker(rateTickPeriod)
	defer ticker.Stop()
	lastProgress := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(c.startedAt)
			target := c.cfg.Profile.TpsAt(elapsed.Milliseconds(), c.cfg.TotalMs)
			c.regulator.SetRate(target)

			c.tpsSampler.UpdateTps(time.Now().UnixMilli())
			c.responseTimes.UpdateSnapshot()
			c.rateLimiterWaits.UpdateSnapshot()

			if elapsed-lastProgress >= progressEvery {
				lastProgress = elapsed
				c.logProgress(elapsed, target)
			}
		}
	}
}

func (c *Controller) logProgress(elapsed time.Duration, targetTps float64) {
	pct := 100 * float64(elapsed.Milliseconds()) / float64(c.cfg.TotalMs)
	snap := c.counters.Snapshot()
	successRate := 0.0
	if snap.Total > 0 {
		successRate = 100 * float64(snap.Success) / float64(snap.Total)
	}
	c.cfg.Logf("progress: %.1f%% | target tps: %.2f | actual tps: %d | success rate: %.2f%%",
		pct, targetTps, c.tpsSampler.CurrentTps(), successRate)
}

func (c *Controller) submissionLoop(ctx context.Context) {
	deadline := c.startedAt.Add(time.Duration(c.cfg.TotalMs) * time.Millisecond)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		if c.cfg.Breaker != nil && !c.cfg.Breaker.AllowRequest() {
			c.cfg.Logf("circuit breaker open, stopping submission")
			return
		}

		requestID := c.requestSeq.Add(1)
		c.pool.submit(func() {
			c.executeOne(ctx, requestID)
		})

		time.Sleep(submissionPause)
	}
}

func (c *Controller) executeOne(ctx context.Context, requestID int64) {
	waitDur, err := c.regulator.Acquire(ctx)
	if err != nil {
		return
	}
	c.rateLimiterWaits.Record(waitDur.Milliseconds())

	if c.cfg.Breaker != nil && !c.cfg.Breaker.AllowRequest() {
		c.recordSkipped()
		return
	}

	req, err := c.cfg.Generator.Next()
	if err != nil {
		c.recordSkipped()
		return
	}

	c.counters.Total.Add(1)
	if req.ContentLength > 0 {
		c.network.RecordRequest(req.ContentLength)
	}
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	req = req.WithContext(reqCtx)

	resp, err := c.cfg.HTTPClient.Do(req)
	responseTime := time.Since(start)
	c.responseTimes.Record(responseTime.Milliseconds())
	c.tpsSampler.Count()

	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			c.counters.Timeout.Add(1)
			c.counters.Failure.Add(1)
			c.errors.RecordException("timeout", err.Error(), time.Now().UnixMilli())
		} else {
			c.counters.Failure.Add(1)
			c.errors.RecordException(string(apperrors.ClassifyKind(err)), err.Error(), time.Now().UnixMilli())
		}
		c.recordBreakerResult(false)
		return
	}
	defer resp.Body.Close()

	body, _ := readLimited(resp.Body)
	c.network.RecordResponse(resp.Header, int64(len(body)))
	c.statusCodes.Record(resp.StatusCode)

	isSuccess := resp.StatusCode >= 200 && resp.StatusCode < 300
	if isSuccess && c.cfg.Validator != nil {
		if ok, _ := c.cfg.Validator.Validate(resp.StatusCode, resp.Header, body); !ok {
			isSuccess = false
		}
	}

	if isSuccess {
		c.counters.Success.Add(1)
	} else {
		c.counters.Failure.Add(1)
		c.errors.RecordErrorResponse(resp.StatusCode, string(body))
	}
	c.recordBreakerResult(isSuccess)
}

func (c *Controller) recordSkipped() {
	c.counters.Skipped.Add(1)
	c.tpsSampler.Count()
}

func (c *Controller) recordBreakerResult(success bool) {
	if c.cfg.Breaker != nil {
		c.cfg.Breaker.RecordResult(success)
	}
}

func (c *Controller) buildResult() result.TestResult {
	percentiles := c.cfg.ResponseTimePercentiles
	responsePercentiles := make(map[int]int64, len(percentiles))
	waitPercentiles := make(map[int]int64, len(percentiles))
	for _, p := range percentiles {
		responsePercentiles[p] = c.responseTimes.Percentile(float64(p))
		waitPercentiles[p] = c.rateLimiterWaits.Percentile(float64(p))
	}

	endedAt := time.Now()
	counters := c.counters.Snapshot()
	averageTps := 0.0
	if durationMs := endedAt.Sub(c.startedAt).Milliseconds(); durationMs > 0 {
		averageTps = 1000 * float64(counters.Total) / float64(durationMs)
	}

	return result.TestResult{
		Name:      c.cfg.Name,
		StartedAt: c.startedAt,
		EndedAt:   endedAt,

		Counters:    counters,
		StatusCodes: c.statusCodes.All(),

		AverageTps: averageTps,
		MaxTps:     c.tpsSampler.MaxTps(),
		MinTps:     c.tpsSampler.MinTps(),
		TpsSamples: c.tpsSampler.Samples(),

		ResponseTimePercentiles:    responsePercentiles,
		ResponseTimeMin:            c.responseTimes.Min(),
		ResponseTimeMax:            c.responseTimes.Max(),
		ResponseTimeMean:           c.responseTimes.Mean(),
		ResponseTimeStdDev:         c.responseTimes.StdDev(),
		RateLimiterWaitPercentiles: waitPercentiles,
		RateLimiterWaitMin:         c.rateLimiterWaits.Min(),
		RateLimiterWaitMax:         c.rateLimiterWaits.Max(),
		RateLimiterWaitMean:        c.rateLimiterWaits.Mean(),

		ErrorReport: c.errors.GenerateReport(time.Now()),

		TotalBytesSent:     c.network.TotalBytesSent(),
		TotalBytesReceived: c.network.TotalBytesReceived(),
		ContentTypeCounts:  c.network.ContentTypeCounts(),

		MaxCpuPct:         c.resourceMonitor.MaxCpuPct(),
		MaxMemUsedBytes:   c.resourceMonitor.MaxMemUsed(),
		ResourceSnapshots: c.resourceMonitor.Snapshots(),
	}
}
