// Package testutil provides testing utilities for graphclust.
//
// This package is intended for use in tests and benchmarks only. It provides
// seeded random data generation (uniform and Gaussian), synthetic blob
// datasets with ground-truth labels, and affinity-graph construction from
// embeddings.
package testutil

import (
	"math"
	"math/rand"

	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
)

// RNG encapsulates a seeded random number generator.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.rand = rand.New(rand.NewSource(r.seed))
}

// FillUniform fills vec with uniform values in [0, 1).
func (r *RNG) FillUniform(vec []float32) {
	for i := range vec {
		vec[i] = r.rand.Float32()
	}
}

// FillGaussian fills vec with standard normal values.
func (r *RNG) FillGaussian(vec []float32) {
	for i := range vec {
		vec[i] = float32(r.rand.NormFloat64())
	}
}

// MakeBlobs generates an n x dim embedding of k isotropic Gaussian blobs
// with the given standard deviation. Blob centers are spaced `spread` apart
// along the first axis. Points are generated blob by blob (first blob gets
// the remainder), and the ground-truth membership is returned alongside.
func MakeBlobs(n, dim, k int, sigma, spread float64, seed int64) (model.Matrix, model.Membership) {
	r := NewRNG(seed)
	data := make([]float32, n*dim)
	truth := make(model.Membership, n)

	per := n / k
	row := 0
	for b := 0; b < k; b++ {
		count := per
		if b == 0 {
			count += n - per*k
		}
		for i := 0; i < count; i++ {
			vec := data[row*dim : (row+1)*dim]
			r.FillGaussian(vec)
			for d := range vec {
				vec[d] = float32(float64(vec[d]) * sigma)
			}
			vec[0] += float32(float64(b) * spread)
			truth[row] = int32(b)
			row++
		}
	}

	m, _ := model.NewMatrix(data, n, dim)
	return m, truth
}

// AffinityFromEmbedding builds a dense Gaussian-kernel affinity graph from
// an embedding: weight(i,j) = exp(-||xi-xj||^2 / (2*bandwidth^2)), with
// weights below cutoff dropped.
func AffinityFromEmbedding(x model.Matrix, bandwidth, cutoff float64) (*graph.Graph, error) {
	b := graph.NewBuilder(x.Rows)
	inv := 1 / (2 * bandwidth * bandwidth)
	for i := 0; i < x.Rows; i++ {
		xi := x.Row(i)
		for j := i + 1; j < x.Rows; j++ {
			xj := x.Row(j)
			var d2 float64
			for c := range xi {
				d := float64(xi[c]) - float64(xj[c])
				d2 += d * d
			}
			w := math.Exp(-d2 * inv)
			if w >= cutoff {
				b.AddEdge(i, j, w)
			}
		}
	}
	return b.Build()
}

// AgreementRate returns the fraction of entity pairs on which two
// memberships agree about co-membership. 1 means identical partitions up to
// relabeling.
func AgreementRate(a, b model.Membership) float64 {
	n := len(a)
	if n < 2 {
		return 1
	}
	var agree, total float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sameA := a[i] == a[j]
			sameB := b[i] == b[j]
			if sameA == sameB {
				agree++
			}
			total++
		}
	}
	return agree / total
}
