package graphclust

import (
	"log/slog"

	"github.com/hupe1980/graphclust/blobstore"
	"github.com/hupe1980/graphclust/detector"
	"github.com/hupe1980/graphclust/model"
	"github.com/hupe1980/graphclust/resource"
)

type options struct {
	blobs            blobstore.Store
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	detectors        map[model.Algorithm]detector.Detector
}

// Option configures Engine construction.
type Option func(*options)

// WithBlobStore configures the blob store used for annotation snapshots.
// Without it, Snapshot and LoadSnapshot return ErrNoBlobStore.
func WithBlobStore(bs blobstore.Store) Option {
	return func(o *options) {
		o.blobs = bs
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &graphclust.BasicMetricsCollector{}
//	eng := graphclust.New(ann, graphclust.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Detections: %d, Avg latency: %dns\n", stats.DetectCount, stats.DetectAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := graphclust.NewJSONLogger(slog.LevelInfo)
//	eng := graphclust.New(ann, graphclust.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithController bounds the engine's parallelism and snapshot bandwidth.
func WithController(ctrl *resource.Controller) Option {
	return func(o *options) {
		o.controller = ctrl
	}
}

// WithDetector overrides or registers the backend for an algorithm.
// Spectral variants share the backend of their base algorithm.
func WithDetector(algo model.Algorithm, d detector.Detector) Option {
	return func(o *options) {
		o.detectors[algo] = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		detectors:        make(map[model.Algorithm]detector.Detector),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
