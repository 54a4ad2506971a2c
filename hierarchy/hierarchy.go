// Package hierarchy implements two-level k-means partitioning.
//
// The coarse-to-fine label assignment it produces seeds community detection
// on large graphs: a topologically coherent initial membership reduces the
// optimizer's iteration count and avoids the poor local optima of random
// initialization. Coarse clusters are assumed well-separated after the first
// level, so second-level fits run with a single restart.
package hierarchy

import (
	"context"
	"log/slog"

	"github.com/hupe1980/graphclust/kmeans"
	"github.com/hupe1980/graphclust/model"
)

// DefaultMinAvgPerCluster is the minimum average number of entities a final
// cluster should hold; requested cluster counts are clamped accordingly.
const DefaultMinAvgPerCluster = 10

// Option configures Partition.
type Option func(*options)

type options struct {
	minAvg int
	logger *slog.Logger
}

// WithMinAvgPerCluster overrides the clamping floor.
func WithMinAvgPerCluster(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minAvg = n
		}
	}
}

// WithLogger sets a structured logger for degenerate-input warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Partition clusters x into at most k1 coarse clusters, then splits each
// coarse cluster into at most k2 fine clusters. Fine ids are globally
// renumbered in ascending coarse-id order, so the result is contiguous in
// [0, sum_i k2_i) and deterministic for a fixed seed and input order.
func Partition(ctx context.Context, x model.Matrix, k1, k2, nInit int, seed int64, opts ...Option) (model.Membership, error) {
	o := options{minAvg: DefaultMinAvgPerCluster}
	for _, opt := range opts {
		opt(&o)
	}

	n := x.Rows
	k1eff := clamp(k1, n, o.minAvg)
	if k1eff == 1 {
		// The whole dataset is a single coarse cluster.
		if o.logger != nil {
			o.logger.Warn("dataset too small for requested first-level clusters", "n", n, "k1", k1)
		}
		return model.Uniform(n), nil
	}

	coarseRes, err := kmeans.Fit(ctx, x.Data, x.Cols, k1eff, kmeans.Options{Seed: seed, NInit: nInit})
	if err != nil {
		return nil, err
	}
	coarse := coarseRes.Labels

	members := make([][]int, k1eff)
	for i, c := range coarse {
		members[c] = append(members[c], i)
	}

	labels := make(model.Membership, n)
	offset := int32(0)
	for i := 0; i < k1eff; i++ {
		idx := members[i]
		k2eff := clamp(k2, len(idx), o.minAvg)
		if k2eff == 1 {
			for _, row := range idx {
				labels[row] = offset
			}
		} else {
			sub := x.Select(idx)
			subRes, err := kmeans.Fit(ctx, sub.Data, sub.Cols, k2eff, kmeans.Options{Seed: seed, NInit: 1})
			if err != nil {
				return nil, err
			}
			for p, row := range idx {
				labels[row] = offset + subRes.Labels[p]
			}
		}
		offset += int32(k2eff)
	}
	return labels, nil
}

// clamp bounds a requested cluster count so that clusters keep at least
// minAvg members on average: min(k, max(n/minAvg, 1)).
func clamp(k, n, minAvg int) int {
	limit := n / minAvg
	if limit < 1 {
		limit = 1
	}
	if k < limit {
		return k
	}
	return limit
}
