package graphclust

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    detectCounter     prometheus.Counter
//	    detectHistogram   prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDetect(algo string, duration time.Duration, err error) {
//	    p.detectCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordDetect is called after each community detection run.
	// algo is the backend name, duration is the total time taken,
	// err is nil if successful.
	RecordDetect(algo string, duration time.Duration, err error)

	// RecordCalibration is called after each resolution calibration.
	// evaluations is the number of detection runs the bisection performed.
	RecordCalibration(evaluations int, duration time.Duration, err error)

	// RecordJumpEstimate is called after each jump method run.
	// kMax is the number of candidate cluster counts evaluated.
	RecordJumpEstimate(kMax int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDetect(string, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCalibration(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordJumpEstimate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DetectCount          atomic.Int64
	DetectErrors         atomic.Int64
	DetectTotalNanos     atomic.Int64
	CalibrationCount     atomic.Int64
	CalibrationErrors    atomic.Int64
	CalibrationEvals     atomic.Int64
	JumpCount            atomic.Int64
	JumpErrors           atomic.Int64
	JumpTotalNanos       atomic.Int64
	SnapshotCount        atomic.Int64
	SnapshotErrors       atomic.Int64
	SnapshotTotalNanos   atomic.Int64
}

// RecordDetect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDetect(algo string, duration time.Duration, err error) {
	b.DetectCount.Add(1)
	b.DetectTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DetectErrors.Add(1)
	}
}

// RecordCalibration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCalibration(evaluations int, duration time.Duration, err error) {
	b.CalibrationCount.Add(1)
	b.CalibrationEvals.Add(int64(evaluations))
	if err != nil {
		b.CalibrationErrors.Add(1)
	}
}

// RecordJumpEstimate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJumpEstimate(kMax int, duration time.Duration, err error) {
	b.JumpCount.Add(1)
	b.JumpTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.JumpErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DetectCount:       b.DetectCount.Load(),
		DetectErrors:      b.DetectErrors.Load(),
		DetectAvgNanos:    b.getAvgDetectNanos(),
		CalibrationCount:  b.CalibrationCount.Load(),
		CalibrationErrors: b.CalibrationErrors.Load(),
		CalibrationEvals:  b.CalibrationEvals.Load(),
		JumpCount:         b.JumpCount.Load(),
		JumpErrors:        b.JumpErrors.Load(),
		SnapshotCount:     b.SnapshotCount.Load(),
		SnapshotErrors:    b.SnapshotErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDetectNanos() int64 {
	count := b.DetectCount.Load()
	if count == 0 {
		return 0
	}
	return b.DetectTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DetectCount       int64
	DetectErrors      int64
	DetectAvgNanos    int64
	CalibrationCount  int64
	CalibrationErrors int64
	CalibrationEvals  int64
	JumpCount         int64
	JumpErrors        int64
	SnapshotCount     int64
	SnapshotErrors    int64
}
