// Package benchmark measures the HTTP stack in process and reports latency
// percentiles alongside the standard ns/op figure.
package benchmark

import (
	"math"
	"sort"
	"sync"
	"testing"
	"time"
)

// LatencyMetrics holds latency statistics for one benchmark run
type LatencyMetrics struct {
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
	Count int           `json:"count"`
}

// MetricsCollector collects per-request timings. Safe for concurrent use
// from b.RunParallel.
type MetricsCollector struct {
	mu        sync.Mutex
	latencies []time.Duration
	errors    int
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordLatency records a single operation latency
func (mc *MetricsCollector) RecordLatency(d time.Duration) {
	mc.mu.Lock()
	mc.latencies = append(mc.latencies, d)
	mc.mu.Unlock()
}

// RecordError records an unexpected response
func (mc *MetricsCollector) RecordError() {
	mc.mu.Lock()
	mc.errors++
	mc.mu.Unlock()
}

// Errors returns the number of recorded errors
func (mc *MetricsCollector) Errors() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.errors
}

// CalculateMetrics computes the latency statistics collected so far
func (mc *MetricsCollector) CalculateMetrics() LatencyMetrics {
	mc.mu.Lock()
	sorted := make([]time.Duration, len(mc.latencies))
	copy(sorted, mc.latencies)
	mc.mu.Unlock()

	if len(sorted) == 0 {
		return LatencyMetrics{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, l := range sorted {
		total += l
	}

	return LatencyMetrics{
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  total / time.Duration(len(sorted)),
		P50:   percentile(sorted, 0.50),
		P90:   percentile(sorted, 0.90),
		P99:   percentile(sorted, 0.99),
		Count: len(sorted),
	}
}

// Report attaches the percentiles and error count to b's output.
func (mc *MetricsCollector) Report(b *testing.B) {
	m := mc.CalculateMetrics()
	b.ReportMetric(float64(m.P50.Microseconds()), "p50-µs")
	b.ReportMetric(float64(m.P99.Microseconds()), "p99-µs")
	b.ReportMetric(float64(mc.Errors()), "errors")
}

// percentile interpolates the p-th percentile of a sorted slice
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	index := p * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower] + time.Duration(weight*float64(sorted[upper]-sorted[lower]))
}
