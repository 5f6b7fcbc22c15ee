package refgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting lifecycle metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    liveBlocks    prometheus.Gauge
//	    destroyErrors prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordCreate(kind refgo.BlockKind, count int, duration time.Duration, err error) {
//	    if err == nil {
//	        p.liveBlocks.Inc()
//	    }
//	}
//
// Implementations are called on the goroutine that performs the operation and
// must be safe for concurrent use.
type MetricsCollector interface {
	// RecordCreate is called after each factory or adoption.
	// count is the number of payload elements, err is nil if successful.
	RecordCreate(kind BlockKind, count int, duration time.Duration, err error)

	// RecordDestroy is called after a payload was torn down by the release of
	// its last strong reference.
	RecordDestroy(kind BlockKind, duration time.Duration, err error)

	// RecordReclaim is called after block storage was handed back to its allocator.
	RecordReclaim(kind BlockKind)

	// RecordUpgrade is called after each Lock on a non-empty weak handle.
	RecordUpgrade(kind BlockKind, ok bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(BlockKind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDestroy(BlockKind, time.Duration, error)     {}
func (NoopMetricsCollector) RecordReclaim(BlockKind)                           {}
func (NoopMetricsCollector) RecordUpgrade(BlockKind, bool)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and leak hunting without external dependencies.
type BasicMetricsCollector struct {
	CreateCount       atomic.Int64
	CreateErrors      atomic.Int64
	CreateElements    atomic.Int64
	DestroyCount      atomic.Int64
	DestroyErrors     atomic.Int64
	DestroyTotalNanos atomic.Int64
	ReclaimCount      atomic.Int64
	UpgradeCount      atomic.Int64
	UpgradeFailures   atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(_ BlockKind, count int, _ time.Duration, err error) {
	if err != nil {
		b.CreateErrors.Add(1)
		return
	}
	b.CreateCount.Add(1)
	b.CreateElements.Add(int64(count))
}

// RecordDestroy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDestroy(_ BlockKind, duration time.Duration, err error) {
	b.DestroyCount.Add(1)
	b.DestroyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DestroyErrors.Add(1)
	}
}

// RecordReclaim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReclaim(BlockKind) {
	b.ReclaimCount.Add(1)
}

// RecordUpgrade implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpgrade(_ BlockKind, ok bool) {
	b.UpgradeCount.Add(1)
	if !ok {
		b.UpgradeFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	created := b.CreateCount.Load()
	reclaimed := b.ReclaimCount.Load()
	return BasicMetricsStats{
		CreateCount:     created,
		CreateErrors:    b.CreateErrors.Load(),
		CreateElements:  b.CreateElements.Load(),
		DestroyCount:    b.DestroyCount.Load(),
		DestroyErrors:   b.DestroyErrors.Load(),
		DestroyAvgNanos: b.getAvgDestroyNanos(),
		ReclaimCount:    reclaimed,
		LiveBlocks:      created - reclaimed,
		UpgradeCount:    b.UpgradeCount.Load(),
		UpgradeFailures: b.UpgradeFailures.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDestroyNanos() int64 {
	count := b.DestroyCount.Load()
	if count == 0 {
		return 0
	}
	return b.DestroyTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CreateCount     int64
	CreateErrors    int64
	CreateElements  int64
	DestroyCount    int64
	DestroyErrors   int64
	DestroyAvgNanos int64
	ReclaimCount    int64
	LiveBlocks      int64
	UpgradeCount    int64
	UpgradeFailures int64
}
