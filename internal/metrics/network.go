package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/codahale/hdrhistogram"
)

// NetworkMetrics tracks byte throughput and response content types,
// supplemental to the core TPS/latency/status-code metrics.
type NetworkMetrics struct {
	totalBytesSent     atomic.Int64
	totalBytesReceived atomic.Int64

	sizeMu          sync.Mutex
	requestSizes    *hdrhistogram.Histogram
	responseSizes   *hdrhistogram.Histogram

	contentTypeMu sync.Mutex
	contentTypes  map[string]int64
}

// NewNetworkMetrics creates an empty tracker.
func NewNetworkMetrics() *NetworkMetrics {
	return &NetworkMetrics{
		requestSizes:  hdrhistogram.New(0, 1<<32, 3),
		responseSizes: hdrhistogram.New(0, 1<<32, 3),
		contentTypes:  make(map[string]int64),
	}
}

// RecordRequest adds sizeBytes to the sent total and the request-size
// histogram.
func (n *NetworkMetrics) RecordRequest(sizeBytes int64) {
	n.totalBytesSent.Add(sizeBytes)
	n.sizeMu.Lock()
	n.requestSizes.RecordValue(sizeBytes)
	n.sizeMu.Unlock()
}

// RecordResponse adds sizeBytes to the received total, the response-size
// histogram, and the content-type count derived from header.
func (n *NetworkMetrics) RecordResponse(header http.Header, sizeBytes int64) {
	n.totalBytesReceived.Add(sizeBytes)
	n.sizeMu.Lock()
	n.responseSizes.RecordValue(sizeBytes)
	n.sizeMu.Unlock()

	if ct := header.Get("Content-Type"); ct != "" {
		n.contentTypeMu.Lock()
		n.contentTypes[ct]++
		n.contentTypeMu.Unlock()
	}
}

// Reset clears every counter, histogram, and content-type count.
func (n *NetworkMetrics) Reset() {
	n.totalBytesSent.Store(0)
	n.totalBytesReceived.Store(0)

	n.sizeMu.Lock()
	n.requestSizes.Reset()
	n.responseSizes.Reset()
	n.sizeMu.Unlock()

	n.contentTypeMu.Lock()
	n.contentTypes = make(map[string]int64)
	n.contentTypeMu.Unlock()
}

// TotalBytesSent returns the running total of request bytes.
func (n *NetworkMetrics) TotalBytesSent() int64 { return n.totalBytesSent.Load() }

// TotalBytesReceived returns the running total of response bytes.
func (n *NetworkMetrics) TotalBytesReceived() int64 { return n.totalBytesReceived.Load() }

// TotalTraffic returns sent + received bytes.
func (n *NetworkMetrics) TotalTraffic() int64 {
	return n.TotalBytesSent() + n.TotalBytesReceived()
}

// TotalTrafficMB returns TotalTraffic in megabytes.
func (n *NetworkMetrics) TotalTrafficMB() float64 {
	return float64(n.TotalTraffic()) / (1024.0 * 1024.0)
}

// RequestSizePercentile returns a percentile of recorded request sizes.
func (n *NetworkMetrics) RequestSizePercentile(p float64) int64 {
	n.sizeMu.Lock()
	defer n.sizeMu.Unlock()
	return n.requestSizes.ValueAtQuantile(p)
}

// ResponseSizePercentile returns a percentile of recorded response sizes.
func (n *NetworkMetrics) ResponseSizePercentile(p float64) int64 {
	n.sizeMu.Lock()
	defer n.sizeMu.Unlock()
	return n.responseSizes.ValueAtQuantile(p)
}

// ContentTypeCounts returns a copy of the content-type occurrence map.
func (n *NetworkMetrics) ContentTypeCounts() map[string]int64 {
	n.contentTypeMu.Lock()
	defer n.contentTypeMu.Unlock()
	out := make(map[string]int64, len(n.contentTypes))
	for k, v := range n.contentTypes {
		out[k] = v
	}
	return out
}
