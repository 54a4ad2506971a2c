// Package detector defines the community detection capability consumed by
// the clustering engine, plus the RB-configuration machinery shared by the
// built-in backends.
//
// A Detector maximizes a resolution-parameterized partition quality
//
//	Q = sum_ij (A_ij - gamma * s_i * s_j / (2W)) * delta(c_i, c_j)
//
// where s_i is node strength and W the total edge weight. Higher resolution
// values tend to produce more, smaller clusters; this monotonicity holds on
// average, not node-by-node. Backends must be deterministic given identical
// graph, resolution, seed and initial membership, so calibration results are
// reproducible and backend-independent.
package detector

import (
	"context"

	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
)

// Options configures a detection run.
type Options struct {
	// Resolution controls partition granularity (gamma in the quality
	// function). Must be positive.
	Resolution float64

	// Seed drives the node-visit shuffles.
	Seed int64

	// InitialMembership seeds the optimization. Nil means a fresh start
	// from singleton clusters. How the seed partition is used is a backend
	// discipline: aggregate-then-refine or iterate-in-place.
	InitialMembership model.Membership

	// MaxIterations bounds refinement passes. Values <= 0 run until the
	// partition is stable.
	MaxIterations int
}

// Detector is the community detection capability. Implementations return a
// membership with contiguous cluster ids starting at 0.
type Detector interface {
	// Name returns the backend identifier.
	Name() string

	// Detect partitions g at the given resolution.
	Detect(ctx context.Context, g *graph.Graph, opts Options) (model.Membership, error)
}
