package detector

import (
	"context"
	"errors"
	"math/rand"

	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
)

// ErrInvalidResolution is returned when the resolution is not positive.
var ErrInvalidResolution = errors.New("resolution must be positive")

// ErrMembershipLength is returned when an initial membership does not cover
// every node of the graph.
var ErrMembershipLength = errors.New("initial membership length does not match graph order")

// moveEps breaks ties towards the current community so passes terminate.
const moveEps = 1e-12

// LocalMove runs greedy node-to-community relocation passes on g, mutating
// labels in place. Nodes are visited in an rng-shuffled order; each node
// joins the neighboring community with the largest positive quality gain, or
// stays put. Labels must be contiguous. At most maxPasses passes run
// (<= 0 means until stable). Reports whether any node moved.
func LocalMove(ctx context.Context, g *graph.Graph, labels model.Membership, gamma float64, rng *rand.Rand, maxPasses int) (bool, error) {
	n := g.Order()
	if n == 0 {
		return false, nil
	}

	k := labels.NumClusters()
	commStrength := make([]float64, k)
	for u := 0; u < n; u++ {
		commStrength[labels[u]] += g.Strength(u)
	}

	twoW := g.TotalStrength()
	if twoW == 0 {
		return false, nil
	}

	w2c := make([]float64, k)
	touched := make([]int32, 0, 32)
	anyMoved := false

	for pass := 0; maxPasses <= 0 || pass < maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return anyMoved, err
		}

		movedInPass := false
		for _, u := range rng.Perm(n) {
			cu := labels[u]
			su := g.Strength(u)
			commStrength[cu] -= su

			nbrs, ws := g.Neighbors(u)
			for p, v := range nbrs {
				c := labels[v]
				if w2c[c] == 0 {
					touched = append(touched, c)
				}
				w2c[c] += ws[p]
			}

			best := cu
			bestGain := w2c[cu] - gamma*su*commStrength[cu]/twoW
			for _, c := range touched {
				if c == cu {
					continue
				}
				gain := w2c[c] - gamma*su*commStrength[c]/twoW
				if gain > bestGain+moveEps {
					bestGain = gain
					best = c
				}
			}

			for _, c := range touched {
				w2c[c] = 0
			}
			touched = touched[:0]

			labels[u] = best
			commStrength[best] += su
			if best != cu {
				movedInPass = true
				anyMoved = true
			}
		}

		if !movedInPass {
			break
		}
	}
	return anyMoved, nil
}

// Quality computes the RB-configuration quality of labels on g at the given
// resolution. Used by backends and tests to compare partitions; the absolute
// scale carries no meaning.
func Quality(g *graph.Graph, labels model.Membership, gamma float64) float64 {
	n := g.Order()
	twoW := g.TotalStrength()
	if twoW == 0 {
		return 0
	}

	k := labels.NumClusters()
	commStrength := make([]float64, k)
	var intra float64
	for u := 0; u < n; u++ {
		commStrength[labels[u]] += g.Strength(u)
		intra += 2 * g.SelfLoop(u)
		nbrs, ws := g.Neighbors(u)
		for p, v := range nbrs {
			if labels[u] == labels[v] {
				intra += ws[p]
			}
		}
	}

	var expected float64
	for _, s := range commStrength {
		expected += s * s
	}
	return intra - gamma*expected/twoW
}
