// Package jump implements the jump method for estimating the statistically
// preferred number of clusters from an embedding alone.
//
// For each candidate K the transformed distortion
//
//	G(K) = (mean squared per-centroid residual over all rows and dims)^(-Y)
//
// is computed from a seeded k-means fit; the jump value at K is
// G(K) - G(K-1) with G(0) = 0, and the optimal K is the argmax of the jump
// values. The K at which adding a cluster produces the largest marginal drop
// in transformed distortion is a proxy for the natural cluster count,
// independent of the affinity graph and the community detector.
package jump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphclust/kmeans"
	"github.com/hupe1980/graphclust/model"
	"github.com/hupe1980/graphclust/resource"
)

// DefaultNInit is the number of k-means restarts per candidate K.
const DefaultNInit = 10

// ErrInvalidKMax is returned when kMax is not positive.
var ErrInvalidKMax = errors.New("kMax must be positive")

// Option configures Estimate.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	controller *resource.Controller
	nInit      int
}

// WithLogger sets a structured logger for per-K progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithController bounds the parallel fits by the controller's worker budget.
func WithController(c *resource.Controller) Option {
	return func(o *options) { o.controller = c }
}

// WithNInit sets the number of k-means restarts per candidate K.
func WithNInit(n int) Option {
	return func(o *options) { o.nInit = n }
}

// DefaultY returns the default transformation power for a d-dimensional
// embedding: min(d/3, 3).
func DefaultY(d int) float64 {
	return math.Min(float64(d)/3, 3)
}

// Estimate runs the jump method on x for K = 1..kMax. A non-positive y
// selects DefaultY. The candidate fits are order-independent and run in
// parallel; the result is deterministic for a fixed seed, kMax and y.
func Estimate(ctx context.Context, x model.Matrix, kMax int, y float64, seed int64, opts ...Option) (*model.JumpProfile, error) {
	if kMax < 1 {
		return nil, ErrInvalidKMax
	}
	if x.Empty() {
		return nil, fmt.Errorf("empty embedding")
	}
	if kMax > x.Rows {
		kMax = x.Rows
	}
	if y <= 0 {
		y = DefaultY(x.Cols)
	}

	o := options{nInit: DefaultNInit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		o.logger.Info("jump method started", "k_max", kMax, "y", y)
	}

	distortions := make([]float64, kMax+1) // index 0 unused, G(0) = 0
	g, gctx := errgroup.WithContext(ctx)
	if o.controller != nil {
		g.SetLimit(o.controller.MaxWorkers())
	} else {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}

	norm := float64(x.Rows) * float64(x.Cols)
	for k := 1; k <= kMax; k++ {
		g.Go(func() error {
			if err := o.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer o.controller.ReleaseWorker()

			res, err := kmeans.Fit(gctx, x.Data, x.Cols, k, kmeans.Options{
				Seed:  seed,
				NInit: o.nInit,
			})
			if err != nil {
				return fmt.Errorf("k = %d: %w", k, err)
			}
			distortions[k] = math.Pow(res.Inertia/norm, -y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &model.JumpProfile{Y: y, Points: make([]model.JumpPoint, kMax)}
	for k := 1; k <= kMax; k++ {
		jump := distortions[k] - distortions[k-1]
		profile.Points[k-1] = model.JumpPoint{K: k, Distortion: distortions[k], Jump: jump}
		if o.logger != nil {
			o.logger.Info("jump method step", "k", k, "jump_value", jump)
		}
	}
	if o.logger != nil {
		o.logger.Info("jump method finished", "optimal_k", profile.OptimalK())
	}
	return profile, nil
}
