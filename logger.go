package graphclust

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with graphclust-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRep adds a representation field to the logger.
func (l *Logger) WithRep(rep string) *Logger {
	return &Logger{
		Logger: l.Logger.With("rep", rep),
	}
}

// WithAlgorithm adds an algorithm field to the logger.
func (l *Logger) WithAlgorithm(algo string) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", algo),
	}
}

// LogDetect logs a community detection run.
func (l *Logger) LogDetect(ctx context.Context, algo string, resolution float64, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "community detection failed",
			"algorithm", algo,
			"resolution", resolution,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "community detection completed",
			"algorithm", algo,
			"resolution", resolution,
			"clusters", clusters,
		)
	}
}

// LogCalibration logs a resolution calibration run.
func (l *Logger) LogCalibration(ctx context.Context, targetK, evaluations int, resolution float64, converged bool) {
	if !converged {
		l.WarnContext(ctx, "calibration did not reach target cluster count",
			"target_k", targetK,
			"evaluations", evaluations,
			"resolution", resolution,
		)
	} else {
		l.InfoContext(ctx, "calibration completed",
			"target_k", targetK,
			"evaluations", evaluations,
			"resolution", resolution,
		)
	}
}

// LogJumpEstimate logs a jump method run.
func (l *Logger) LogJumpEstimate(ctx context.Context, rep string, kMax, optimalK int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "jump method failed",
			"rep", rep,
			"k_max", kMax,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "jump method completed",
			"rep", rep,
			"k_max", kMax,
			"optimal_k", optimalK,
		)
	}
}

// LogSingletonRetry logs a completed singleton retry loop.
func (l *Logger) LogSingletonRetry(ctx context.Context, from, to float64, resolved bool) {
	if resolved {
		l.WarnContext(ctx, "singleton retry reduced resolution",
			"from", from,
			"to", to,
		)
	} else {
		l.WarnContext(ctx, "singleton clusters persist at minimum resolution",
			"from", from,
			"to", to,
		)
	}
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
