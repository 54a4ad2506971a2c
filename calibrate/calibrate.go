// Package calibrate searches for the smallest resolution at which a community
// detection backend yields at least a target number of clusters.
//
// The search bisects the resolution interval [0.01, ResolMax]. Cluster count
// generally grows with resolution but is not strictly monotone, so the result
// is the smallest admissible resolution among those evaluated, not a global
// minimum. When no evaluated midpoint is admissible the search falls back to
// the right edge of the interval; when every midpoint is admissible it probes
// the left edge as well, since the bisection alone never visits it.
package calibrate

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/hupe1980/graphclust/detector"
	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
)

// ResolMin is the left edge of the search interval.
const ResolMin = 0.01

// Default search parameters.
const (
	DefaultResolMax  = 2.0
	DefaultTolerance = 0.05
)

// ErrInvalidTarget is returned when the target cluster count is not positive.
var ErrInvalidTarget = errors.New("calibrate: target cluster count must be positive")

// ErrInvalidInterval is returned when ResolMax does not exceed the left edge.
var ErrInvalidInterval = errors.New("calibrate: resolution interval is empty")

// Options configures a calibration run.
type Options struct {
	// ResolMax is the right edge of the search interval. Defaults to 2.0.
	ResolMax float64

	// Tolerance stops the bisection once the interval is narrower than this.
	// Defaults to 0.05.
	Tolerance float64

	// Seed is forwarded to every detection run.
	Seed int64

	// MaxIterations is forwarded to every detection run.
	MaxIterations int

	// Logger, if set, records every evaluation.
	Logger *slog.Logger
}

// Result holds the outcome of a calibration run.
type Result struct {
	// Resolution is the chosen resolution.
	Resolution float64

	// Membership is the partition detected at Resolution.
	Membership model.Membership

	// K is the number of clusters in Membership.
	K int

	// Evaluations counts the detection runs performed.
	Evaluations int

	// Converged reports whether K meets the target. When false, Resolution
	// is the right edge of the interval and K fell short everywhere.
	Converged bool
}

// Calibrate bisects the resolution interval until it is narrower than the
// tolerance, keeping the smallest evaluated resolution whose partition has at
// least targetK clusters. Detection runs reuse the seed from opts, so the
// result is deterministic for a fixed backend and graph.
func Calibrate(ctx context.Context, d detector.Detector, g *graph.Graph, targetK int, opts Options) (*Result, error) {
	if targetK <= 0 {
		return nil, ErrInvalidTarget
	}
	if opts.ResolMax == 0 {
		opts.ResolMax = DefaultResolMax
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.ResolMax <= ResolMin {
		return nil, ErrInvalidInterval
	}

	res := &Result{}
	left, right := ResolMin, opts.ResolMax
	leftMoved := false

	evaluate := func(resol float64) (model.Membership, int, error) {
		m, err := d.Detect(ctx, g, detector.Options{
			Resolution:    resol,
			Seed:          opts.Seed,
			MaxIterations: opts.MaxIterations,
		})
		if err != nil {
			return nil, 0, err
		}
		res.Evaluations++
		k := m.NumClusters()
		if opts.Logger != nil {
			opts.Logger.Debug("calibration step", "backend", d.Name(), "resolution", resol, "clusters", k, "target", targetK)
		}
		return m, k, nil
	}

	for right-left > opts.Tolerance {
		mid := (left + right) / 2
		m, k, err := evaluate(mid)
		if err != nil {
			return nil, err
		}
		if k >= targetK {
			right = mid
			res.Resolution = mid
			res.Membership = m
			res.K = k
			res.Converged = true
		} else {
			left = mid
			leftMoved = true
		}
	}

	if !res.Converged {
		// Nothing admissible below ResolMax; settle for the right edge.
		m, k, err := evaluate(opts.ResolMax)
		if err != nil {
			return nil, err
		}
		res.Resolution = opts.ResolMax
		res.Membership = m
		res.K = k
		res.Converged = k >= targetK
		if !res.Converged && opts.Logger != nil {
			opts.Logger.Warn("calibration did not reach target", "backend", d.Name(), "clusters", k, "target", targetK, "resol_max", opts.ResolMax)
		}
		return res, nil
	}

	if !leftMoved {
		// Every midpoint was admissible, so the optimum may sit at the left
		// edge, which the bisection never evaluates.
		m, k, err := evaluate(ResolMin)
		if err != nil {
			return nil, err
		}
		if k >= targetK {
			res.Resolution = ResolMin
			res.Membership = m
			res.K = k
		}
	}
	return res, nil
}

// MaxEvaluations returns the number of detection runs a converging bisection
// over [ResolMin, resolMax] performs before any edge probe.
func MaxEvaluations(resolMax, tolerance float64) int {
	return int(math.Ceil(math.Log2((resolMax - ResolMin) / tolerance)))
}
