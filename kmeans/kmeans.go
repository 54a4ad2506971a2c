package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// DefaultMaxIterations bounds Lloyd iterations per restart.
const DefaultMaxIterations = 100

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrTooFewPoints is returned when the data holds fewer points than k.
	ErrTooFewPoints = errors.New("fewer points than clusters")
)

// Options configures a fit.
type Options struct {
	// Seed drives all randomness of the fit.
	Seed int64

	// NInit is the number of restarts; the restart with the lowest inertia
	// wins. Values < 1 are treated as 1.
	NInit int

	// MaxIterations bounds Lloyd iterations per restart.
	// Values < 1 fall back to DefaultMaxIterations.
	MaxIterations int
}

// Result is the outcome of a fit.
type Result struct {
	// Labels assigns each point to a centroid index in [0, K).
	Labels []int32

	// Centroids holds the flattened K x dim centroid matrix.
	Centroids []float32

	// Inertia is the sum of squared distances of points to their centroid.
	Inertia float64

	// K is the number of centroids.
	K int
}

// Fit clusters n = len(data)/dim points into k clusters.
func Fit(ctx context.Context, data []float32, dim, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if dim <= 0 || len(data)%dim != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of dim %d", len(data), dim)
	}
	n := len(data) / dim
	if n < k {
		return nil, fmt.Errorf("%d points, k = %d: %w", n, k, ErrTooFewPoints)
	}

	nInit := opts.NInit
	if nInit < 1 {
		nInit = 1
	}
	maxIter := opts.MaxIterations
	if maxIter < 1 {
		maxIter = DefaultMaxIterations
	}

	var best *Result
	for r := 0; r < nInit; r++ {
		res, err := fitOnce(ctx, data, dim, n, k, opts.Seed+int64(r), maxIter)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func fitOnce(ctx context.Context, data []float32, dim, n, k int, seed int64, maxIter int) (*Result, error) {
	rng := rand.New(rand.NewSource(seed))

	// Initialize centroids from distinct data points.
	centroids := make([]float32, k*dim)
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], data[perm[i]*dim:(perm[i]+1)*dim])
	}

	labels := make([]int32, n)
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for i := 0; i < n; i++ {
			vec := data[i*dim : (i+1)*dim]
			best := int32(-1)
			minDist := float32(math.MaxFloat32)
			for j := 0; j < k; j++ {
				d := squaredL2(vec, centroids[j*dim:(j+1)*dim])
				if d < minDist {
					minDist = d
					best = int32(j)
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < n; i++ {
			c := int(labels[i])
			vec := data[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += vec[d]
			}
			counts[c]++
		}
		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				scale := 1 / float32(counts[j])
				for d := 0; d < dim; d++ {
					centroids[j*dim+d] = sums[j*dim+d] * scale
				}
			} else {
				// Reseed empty cluster from a random point.
				idx := rng.Intn(n)
				copy(centroids[j*dim:(j+1)*dim], data[idx*dim:(idx+1)*dim])
			}
		}
	}

	var inertia float64
	for i := 0; i < n; i++ {
		c := int(labels[i])
		inertia += float64(squaredL2(data[i*dim:(i+1)*dim], centroids[c*dim:(c+1)*dim]))
	}

	return &Result{Labels: labels, Centroids: centroids, Inertia: inertia, K: k}, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
