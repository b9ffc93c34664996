package lazycdf

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting import metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordImport is called once per Import call with the strategy that
	// succeeded (empty on failure).
	RecordImport(strategy string, duration time.Duration, err error)

	// RecordStage is called after each strategy attempt.
	RecordStage(strategy string, duration time.Duration, err error)

	// RecordFallback is called when memory exhaustion moves an import
	// from one strategy to the next.
	RecordFallback(from, to string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordImport(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordStage(string, time.Duration, error)  {}
func (NoopMetricsCollector) RecordFallback(string, string)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportTotalNanos atomic.Int64
	StageCount       atomic.Int64
	StageErrors      atomic.Int64
	FallbackCount    atomic.Int64

	mu        sync.Mutex
	successes map[string]int64
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(strategy string, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
		return
	}
	b.mu.Lock()
	if b.successes == nil {
		b.successes = make(map[string]int64)
	}
	b.successes[strategy]++
	b.mu.Unlock()
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(_ string, _ time.Duration, err error) {
	b.StageCount.Add(1)
	if err != nil {
		b.StageErrors.Add(1)
	}
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback(string, string) {
	b.FallbackCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	successes := make(map[string]int64, len(b.successes))
	for k, v := range b.successes {
		successes[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		ImportCount:    b.ImportCount.Load(),
		ImportErrors:   b.ImportErrors.Load(),
		ImportAvgNanos: b.getAvgImportNanos(),
		StageCount:     b.StageCount.Load(),
		StageErrors:    b.StageErrors.Load(),
		FallbackCount:  b.FallbackCount.Load(),
		Successes:      successes,
	}
}

func (b *BasicMetricsCollector) getAvgImportNanos() int64 {
	count := b.ImportCount.Load()
	if count == 0 {
		return 0
	}
	return b.ImportTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ImportCount    int64
	ImportErrors   int64
	ImportAvgNanos int64
	StageCount     int64
	StageErrors    int64
	FallbackCount  int64
	// Successes counts successful imports per strategy name.
	Successes map[string]int64
}
