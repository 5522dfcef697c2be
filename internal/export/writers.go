package export

import (
	"fmt"
	"sort"

	"github.com/kunkun/tpsgen/internal/metrics"
	"github.com/kunkun/tpsgen/internal/result"
)

// WritePrimaryMetrics writes the two-column (Metric, Value) summary CSV
// named <name>_<yyyyMMdd_HHmmss>.csv.
func WritePrimaryMetrics(outputDir, filename string, r result.TestResult) (string, error) {
	w, err := NewCSVWriter(CSVWriterConfig{
		OutputDir: outputDir,
		Filename:  filename,
		Headers:   []string{"Metric", "Value"},
	})
	if err != nil {
		return "", err
	}
	defer w.Close()

	row := func(metric, value string) error {
		return w.WriteRow([]string{metric, value})
	}

	if err := row("Start Time", FormatTime(r.StartedAt)); err != nil {
		return "", err
	}
	if err := row("End Time", FormatTime(r.EndedAt)); err != nil {
		return "", err
	}
	if err := row("Duration (ms)", FormatInt64(r.DurationMs())); err != nil {
		return "", err
	}
	if err := row("Duration (s)", FormatFloat64(r.DurationSeconds())); err != nil {
		return "", err
	}
	if err := row("Total Requests", FormatInt64(r.Counters.Total)); err != nil {
		return "", err
	}
	if err := row("Successful Requests", FormatInt64(r.Counters.Success)); err != nil {
		return "", err
	}
	if err := row("Failed Requests", FormatInt64(r.Counters.Failure)); err != nil {
		return "", err
	}
	if err := row("Timed Out Requests", FormatInt64(r.Counters.Timeout)); err != nil {
		return "", err
	}
	if err := row("Skipped Requests", FormatInt64(r.Counters.Skipped)); err != nil {
		return "", err
	}
	if err := row("Success Rate", fmt.Sprintf("%.4f", r.SuccessRate())); err != nil {
		return "", err
	}
	if err := row("Average TPS", FormatFloat64(r.AverageTps)); err != nil {
		return "", err
	}
	if err := row("Max TPS", FormatInt64(r.MaxTps)); err != nil {
		return "", err
	}
	if err := row("Min TPS", FormatInt64(r.MinTps)); err != nil {
		return "", err
	}

	if err := row("Response Time Min (ms)", FormatInt64(r.ResponseTimeMin)); err != nil {
		return "", err
	}
	if err := writeLatencyRows(row, "Response Time", r.ResponseTimePercentiles); err != nil {
		return "", err
	}
	if err := row("Response Time Max (ms)", FormatInt64(r.ResponseTimeMax)); err != nil {
		return "", err
	}
	if err := row("Rate Limiter Wait Min (ms)", FormatInt64(r.RateLimiterWaitMin)); err != nil {
		return "", err
	}
	if err := writeLatencyRows(row, "Rate Limiter Wait", r.RateLimiterWaitPercentiles); err != nil {
		return "", err
	}
	if err := row("Rate Limiter Wait Max (ms)", FormatInt64(r.RateLimiterWaitMax)); err != nil {
		return "", err
	}

	for _, code := range sortedStatusCodes(r.StatusCodes) {
		if err := row(fmt.Sprintf("Status Code %d", code), FormatInt64(r.StatusCodes[code])); err != nil {
			return "", err
		}
	}

	if err := row("Max CPU (%)", FormatFloat64(r.MaxCpuPct)); err != nil {
		return "", err
	}
	if err := row("Max Memory Used (MB)", FormatFloat64(float64(r.MaxMemUsedBytes)/(1024*1024))); err != nil {
		return "", err
	}

	if err := row("Total Bytes Sent", FormatInt64(r.TotalBytesSent)); err != nil {
		return "", err
	}
	if err := row("Total Bytes Received", FormatInt64(r.TotalBytesReceived)); err != nil {
		return "", err
	}
	for _, ct := range topContentTypes(r.ContentTypeCounts, 5) {
		if err := row("Content Type "+ct.key, FormatInt64(ct.count)); err != nil {
			return "", err
		}
	}

	return w.Path(), nil
}

func writeLatencyRows(row func(metric, value string) error, label string, percentiles map[int]int64) error {
	ordered := make([]int, 0, len(percentiles))
	for p := range percentiles {
		ordered = append(ordered, p)
	}
	sort.Ints(ordered)
	for _, p := range ordered {
		if err := row(fmt.Sprintf("%s p%d (ms)", label, p), FormatInt64(percentiles[p])); err != nil {
			return err
		}
	}
	return nil
}

func sortedStatusCodes(m map[int]int64) []int {
	codes := make([]int, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

type contentTypeCount struct {
	key   string
	count int64
}

func topContentTypes(m map[string]int64, limit int) []contentTypeCount {
	entries := make([]contentTypeCount, 0, len(m))
	for k, v := range m {
		entries = append(entries, contentTypeCount{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// WriteTpsSamples writes tps_samples.csv.
func WriteTpsSamples(outputDir string, startedAt int64, samples []metrics.TpsSample) (string, error) {
	w, err := NewCSVWriter(CSVWriterConfig{
		OutputDir: outputDir,
		Filename:  "tps_samples",
		Headers:   []string{"Timestamp", "Elapsed (ms)", "TPS"},
	})
	if err != nil {
		return "", err
	}
	defer w.Close()

	for _, s := range samples {
		row := []string{
			FormatInt64(s.TimestampMs),
			FormatInt64(s.TimestampMs - startedAt),
			FormatInt64(s.Tps),
		}
		if err := w.WriteRow(row); err != nil {
			return "", err
		}
	}
	return w.Path(), nil
}

// WriteResourceSnapshots writes resource_snapshots.csv.
func WriteResourceSnapshots(outputDir string, startedAt int64, snapshots []metrics.ResourceSnapshot) (string, error) {
	w, err := NewCSVWriter(CSVWriterConfig{
		OutputDir: outputDir,
		Filename:  "resource_snapshots",
		Headers: []string{
			"Timestamp", "Elapsed (ms)", "CPU (%)", "Heap Used (MB)", "Heap Committed (MB)",
			"Non-Heap Used (MB)", "Total Memory (MB)", "Free Memory (MB)", "Active Threads",
			"Total Threads", "Daemon Threads",
		},
	})
	if err != nil {
		return "", err
	}
	defer w.Close()

	const mb = 1024 * 1024
	// Go has no daemon/non-daemon thread distinction; goroutine count fills
	// both the active and total columns, and daemon is always 0.
	for _, s := range snapshots {
		row := []string{
			FormatInt64(s.TimestampMs),
			FormatInt64(s.TimestampMs - startedAt),
			FormatFloat64(s.CpuPct),
			FormatFloat64(float64(s.HeapUsedBytes) / mb),
			FormatFloat64(float64(s.HeapSysBytes) / mb),
			FormatFloat64(float64(s.NonHeapBytes) / mb),
			FormatFloat64(float64(s.TotalMemBytes) / mb),
			FormatFloat64(float64(s.FreeMemBytes) / mb),
			FormatInt(s.GoroutineCount),
			FormatInt(s.GoroutineCount),
			"0",
		}
		if err := w.WriteRow(row); err != nil {
			return "", err
		}
	}
	return w.Path(), nil
}
