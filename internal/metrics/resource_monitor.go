package metrics

import (
	"context"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MaxResourceSnapshots bounds the in-memory snapshot list.
const MaxResourceSnapshots = 7200

// ResourceSnapshot is one point-in-time process resource reading.
type ResourceSnapshot struct {
	TimestampMs     int64
	CpuPct          float64
	HeapUsedBytes   uint64
	HeapSysBytes    uint64
	NonHeapBytes    uint64
	TotalMemBytes   uint64
	FreeMemBytes    uint64
	GoroutineCount  int
}

// ResourceMonitor periodically samples process resource usage on its own
// goroutine, stopped cooperatively via context cancellation.
type ResourceMonitor struct {
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	mu          sync.Mutex
	snapshots   []ResourceSnapshot
	maxCpuPct   float64
	maxMemUsed  uint64
}

// NewResourceMonitor creates a stopped monitor.
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{}
}

// Start begins sampling at interval on a dedicated goroutine. A second
// call while already running is a no-op.
func (m *ResourceMonitor) Start(ctx context.Context, interval time.Duration) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		m.captureSnapshot()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.captureSnapshot()
			}
		}
	}()
}

// Stop halts sampling and waits for the sampling goroutine to exit.
func (m *ResourceMonitor) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	m.cancel()
	<-m.done
}

func (m *ResourceMonitor) captureSnapshot() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snapshot := ResourceSnapshot{
		TimestampMs:    time.Now().UnixMilli(),
		CpuPct:         cpuPercent(),
		HeapUsedBytes:  ms.HeapAlloc,
		HeapSysBytes:   ms.HeapSys,
		NonHeapBytes:   ms.StackSys + ms.MSpanSys + ms.MCacheSys + ms.GCSys + ms.OtherSys,
		TotalMemBytes:  ms.Sys,
		FreeMemBytes:   ms.HeapIdle - ms.HeapReleased,
		GoroutineCount: runtime.NumGoroutine(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.snapshots) >= MaxResourceSnapshots {
		m.snapshots = m.snapshots[1:]
	}
	m.snapshots = append(m.snapshots, snapshot)
	if snapshot.CpuPct > m.maxCpuPct {
		m.maxCpuPct = snapshot.CpuPct
	}
	totalUsed := snapshot.HeapUsedBytes + snapshot.NonHeapBytes
	if totalUsed > m.maxMemUsed {
		m.maxMemUsed = totalUsed
	}
}

// cpuPercent returns an approximate process CPU percentage via
// /proc/loadavg normalized by NumCPU, since Go has no direct per-process
// CPU-load equivalent to Java's com.sun.management MXBean. Returns 0 on
// any read/parse failure, NaN, or negative result.
func cpuPercent() float64 {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0
	}
	load1, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	pct := load1 * 100 / float64(runtime.NumCPU())
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	return pct
}

// Reset clears retained snapshots and running maxima. Callers must Stop
// the monitor first if it is running.
func (m *ResourceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = nil
	m.maxCpuPct = 0
	m.maxMemUsed = 0
}

// Snapshots returns a copy of every retained snapshot.
func (m *ResourceMonitor) Snapshots() []ResourceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ResourceSnapshot(nil), m.snapshots...)
}

// MaxCpuPct returns the highest CPU% observed.
func (m *ResourceMonitor) MaxCpuPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxCpuPct
}

// MaxMemUsed returns the highest heap+non-heap bytes observed.
func (m *ResourceMonitor) MaxMemUsed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxMemUsed
}
