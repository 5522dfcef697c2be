package metrics

import (
	"sort"
	"sync"
	"time"
)

// MaxErrorSamples bounds the per-key sample rings kept by the analyzer.
const MaxErrorSamples = 100

// ExceptionSample records one failure that never reached an HTTP status
// (connection refused, timeout, synthesis failure, ...).
type ExceptionSample struct {
	TimestampMs int64
	Message     string
}

// ErrorAnalyzer keeps bounded, per-key samples of error responses and
// non-HTTP failures for end-of-run reporting.
type ErrorAnalyzer struct {
	mu                 sync.Mutex
	responsesByStatus  map[int][]string
	countsByKind       map[string]int64
	samplesByKind      map[string][]ExceptionSample
}

// NewErrorAnalyzer creates an empty analyzer.
func NewErrorAnalyzer() *ErrorAnalyzer {
	return &ErrorAnalyzer{
		responsesByStatus: make(map[int][]string),
		countsByKind:      make(map[string]int64),
		samplesByKind:     make(map[string][]ExceptionSample),
	}
}

// RecordErrorResponse appends a response body sample for statusCode if
// statusCode >= 400, bounded to MaxErrorSamples per code (newest entries
// are dropped once full, mirroring a bounded offer-only queue).
func (a *ErrorAnalyzer) RecordErrorResponse(statusCode int, body string) {
	if statusCode < 400 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	samples := a.responsesByStatus[statusCode]
	if len(samples) < MaxErrorSamples {
		a.responsesByStatus[statusCode] = append(samples, body)
	}
}

// RecordException counts an occurrence of kind and appends a bounded
// sample.
func (a *ErrorAnalyzer) RecordException(kind string, message string, timestampMs int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.countsByKind[kind]++
	samples := a.samplesByKind[kind]
	if len(samples) < MaxErrorSamples {
		a.samplesByKind[kind] = append(samples, ExceptionSample{TimestampMs: timestampMs, Message: message})
	}
}

// Reset clears every recorded sample and count.
func (a *ErrorAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responsesByStatus = make(map[int][]string)
	a.countsByKind = make(map[string]int64)
	a.samplesByKind = make(map[string][]ExceptionSample)
}

// TotalExceptionCount sums all exception-kind counts.
func (a *ErrorAnalyzer) TotalExceptionCount() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total int64
	for _, c := range a.countsByKind {
		total += c
	}
	return total
}

// TotalErrorResponseCount sums the sample counts across all status codes.
func (a *ErrorAnalyzer) TotalErrorResponseCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, s := range a.responsesByStatus {
		total += len(s)
	}
	return total
}

// CountEntry is a (key, count) pair for a Top-N report.
type CountEntry struct {
	Key   string
	Count int64
}

// TopExceptions returns up to limit exception kinds sorted by count
// descending, ties broken by key ascending (map iteration order is not
// stable in Go, so the key gives a deterministic order).
func (a *ErrorAnalyzer) TopExceptions(limit int) []CountEntry {
	a.mu.Lock()
	entries := make([]CountEntry, 0, len(a.countsByKind))
	for k, c := range a.countsByKind {
		entries = append(entries, CountEntry{Key: k, Count: c})
	}
	a.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// StatusEntry is a (status code, sample count) pair for a Top-N report.
type StatusEntry struct {
	StatusCode int
	Count      int
}

// TopErrorStatusCodes returns up to limit status codes sorted by sample
// count descending, ties broken by status code ascending.
func (a *ErrorAnalyzer) TopErrorStatusCodes(limit int) []StatusEntry {
	a.mu.Lock()
	entries := make([]StatusEntry, 0, len(a.responsesByStatus))
	for code, samples := range a.responsesByStatus {
		entries = append(entries, StatusEntry{StatusCode: code, Count: len(samples)})
	}
	a.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].StatusCode < entries[j].StatusCode
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// RecentExceptionSamples returns up to 3 samples for kind, most recent
// first.
func (a *ErrorAnalyzer) RecentExceptionSamples(kind string) []ExceptionSample {
	a.mu.Lock()
	samples := append([]ExceptionSample(nil), a.samplesByKind[kind]...)
	a.mu.Unlock()

	sort.Slice(samples, func(i, j int) bool { return samples[i].TimestampMs > samples[j].TimestampMs })
	if len(samples) > 3 {
		samples = samples[:3]
	}
	return samples
}

// RecentErrorResponses returns up to 3 response-body samples for
// statusCode, in recording order (the source queue is insertion-order
// only; no timestamp is kept per response sample).
func (a *ErrorAnalyzer) RecentErrorResponses(statusCode int) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	samples := a.responsesByStatus[statusCode]
	if len(samples) > 3 {
		samples = samples[len(samples)-3:]
	}
	return append([]string(nil), samples...)
}

// Report is the full end-of-run error summary.
type Report struct {
	TotalExceptionCount     int64
	TotalErrorResponseCount int
	TopExceptions           []CountEntry
	TopErrorStatusCodes     []StatusEntry
	ExceptionSamples        map[string][]ExceptionSample
	ErrorResponseSamples    map[int][]string
	GeneratedAt             time.Time
}

// GenerateReport assembles the full report with Top-10 lists and the
// most recent 3 samples per key.
func (a *ErrorAnalyzer) GenerateReport(now time.Time) Report {
	topExceptions := a.TopExceptions(10)
	topStatuses := a.TopErrorStatusCodes(10)

	exceptionSamples := make(map[string][]ExceptionSample, len(topExceptions))
	for _, e := range topExceptions {
		exceptionSamples[e.Key] = a.RecentExceptionSamples(e.Key)
	}
	responseSamples := make(map[int][]string, len(topStatuses))
	for _, s := range topStatuses {
		responseSamples[s.StatusCode] = a.RecentErrorResponses(s.StatusCode)
	}

	return Report{
		TotalExceptionCount:     a.TotalExceptionCount(),
		TotalErrorResponseCount: a.TotalErrorResponseCount(),
		TopExceptions:           topExceptions,
		TopErrorStatusCodes:     topStatuses,
		ExceptionSamples:        exceptionSamples,
		ErrorResponseSamples:    responseSamples,
		GeneratedAt:             now,
	}
}
