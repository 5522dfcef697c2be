package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kunkun/tpsgen/internal/metrics"
	"github.com/kunkun/tpsgen/internal/result"
)

func sampleResult() result.TestResult {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return result.TestResult{
		Name:      "smoke-test",
		StartedAt: start,
		EndedAt:   start.Add(10 * time.Second),
		Counters:  metrics.CounterSnapshot{Total: 100, Success: 95, Failure: 5},
		StatusCodes: map[int]int64{200: 95, 500: 5},

		AverageTps: 10,
		MaxTps:     12,
		MinTps:     8,

		ResponseTimePercentiles:    map[int]int64{50: 20, 90: 40, 95: 55, 99: 90},
		ResponseTimeMin:            5,
		ResponseTimeMax:            120,
		RateLimiterWaitPercentiles: map[int]int64{50: 1, 90: 2, 95: 3, 99: 5},
		RateLimiterWaitMin:         0,
		RateLimiterWaitMax:         8,

		TotalBytesSent:     1000,
		TotalBytesReceived: 5000,
		ContentTypeCounts:  map[string]int64{"application/json": 90, "text/plain": 10},

		MaxCpuPct:       42.5,
		MaxMemUsedBytes: 64 * 1024 * 1024,
	}
}

func TestWritePrimaryMetricsIncludesAllRows(t *testing.T) {
	dir := t.TempDir()
	path, err := WritePrimaryMetrics(dir, "smoke-test_20260101_000000", sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"Total Requests,100",
		"Successful Requests,95",
		"Failed Requests,5",
		"Response Time Min (ms),5",
		"Response Time p95 (ms),55",
		"Response Time Max (ms),120",
		"Rate Limiter Wait Min (ms),0",
		"Rate Limiter Wait p99 (ms),5",
		"Rate Limiter Wait Max (ms),8",
		"Status Code 200,95",
		"Status Code 500,5",
		"Content Type application/json,90",
		"Content Type text/plain,10",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, content)
		}
	}
}

func TestWritePrimaryMetricsCapsContentTypesAtFive(t *testing.T) {
	dir := t.TempDir()
	r := sampleResult()
	r.ContentTypeCounts = map[string]int64{
		"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6,
	}
	path, err := WritePrimaryMetrics(dir, "capped", r)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	count := strings.Count(string(data), "Content Type ")
	if count != 5 {
		t.Fatalf("expected 5 content type rows, got %d", count)
	}
	if !strings.Contains(string(data), "Content Type f,6") {
		t.Fatalf("expected the highest-count entry to survive the cap, got:\n%s", string(data))
	}
}

func TestWriteTpsSamples(t *testing.T) {
	dir := t.TempDir()
	startedAt := int64(1_000_000)
	samples := []metrics.TpsSample{
		{TimestampMs: startedAt, Tps: 5},
		{TimestampMs: startedAt + 1000, Tps: 7},
	}
	path, err := WriteTpsSamples(dir, startedAt, samples)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "tps_samples.csv" {
		t.Fatalf("unexpected filename: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %q", len(lines), string(data))
	}
	if lines[1] != "1000000,0,5" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "1001000,1000,7" {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}

func TestWriteResourceSnapshotsFillsGoroutineCountForBothThreadColumns(t *testing.T) {
	dir := t.TempDir()
	startedAt := int64(0)
	snapshots := []metrics.ResourceSnapshot{
		{TimestampMs: 0, CpuPct: 10, GoroutineCount: 42},
	}
	path, err := WriteResourceSnapshots(dir, startedAt, snapshots)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d: %q", len(lines), string(data))
	}
	fields := strings.Split(lines[1], ",")
	activeThreads := fields[len(fields)-3]
	totalThreads := fields[len(fields)-2]
	daemonThreads := fields[len(fields)-1]
	if activeThreads != "42" || totalThreads != "42" {
		t.Fatalf("expected goroutine count in both thread columns, got active=%s total=%s", activeThreads, totalThreads)
	}
	if daemonThreads != "0" {
		t.Fatalf("expected daemon threads to always be 0, got %s", daemonThreads)
	}
}
