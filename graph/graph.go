package graph

import (
	"fmt"
	"sort"

	"github.com/hupe1980/graphclust/model"
)

// Graph is a weighted undirected graph in CSR form. Node strengths and the
// total weight are precomputed at construction time; the structure is
// immutable afterwards and safe for concurrent reads.
type Graph struct {
	offsets  []int32
	nbrs     []int32
	weights  []float64
	self     []float64 // self-loop weight per node (aggregated graphs only)
	strength []float64 // incident edge weight, self-loops counted twice
	total    float64   // sum of strengths (2W)
}

type edge struct {
	u, v int32
	w    float64
}

// newGraph assembles the CSR structure from an undirected edge list.
// Self-loop weights are passed separately; self may be nil.
func newGraph(n int, edges []edge, self []float64) *Graph {
	deg := make([]int32, n)
	for _, e := range edges {
		deg[e.u]++
		deg[e.v]++
	}

	g := &Graph{
		offsets:  make([]int32, n+1),
		nbrs:     make([]int32, 0),
		weights:  make([]float64, 0),
		self:     make([]float64, n),
		strength: make([]float64, n),
	}
	if self != nil {
		copy(g.self, self)
	}

	for i := 0; i < n; i++ {
		g.offsets[i+1] = g.offsets[i] + deg[i]
	}
	total := int(g.offsets[n])
	g.nbrs = make([]int32, total)
	g.weights = make([]float64, total)

	cursor := make([]int32, n)
	copy(cursor, g.offsets[:n])
	for _, e := range edges {
		g.nbrs[cursor[e.u]] = e.v
		g.weights[cursor[e.u]] = e.w
		cursor[e.u]++
		g.nbrs[cursor[e.v]] = e.u
		g.weights[cursor[e.v]] = e.w
		cursor[e.v]++
	}

	// Sort each adjacency run by neighbor id so iteration order is
	// deterministic regardless of input edge order.
	for i := 0; i < n; i++ {
		lo, hi := g.offsets[i], g.offsets[i+1]
		run := adjacencyRun{nbrs: g.nbrs[lo:hi], weights: g.weights[lo:hi]}
		sort.Sort(run)
	}

	for i := 0; i < n; i++ {
		s := 2 * g.self[i]
		for p := g.offsets[i]; p < g.offsets[i+1]; p++ {
			s += g.weights[p]
		}
		g.strength[i] = s
		g.total += s
	}
	return g
}

type adjacencyRun struct {
	nbrs    []int32
	weights []float64
}

func (r adjacencyRun) Len() int           { return len(r.nbrs) }
func (r adjacencyRun) Less(i, j int) bool { return r.nbrs[i] < r.nbrs[j] }
func (r adjacencyRun) Swap(i, j int) {
	r.nbrs[i], r.nbrs[j] = r.nbrs[j], r.nbrs[i]
	r.weights[i], r.weights[j] = r.weights[j], r.weights[i]
}

// FromDense builds a graph from a square, symmetric, non-negative pairwise
// weight matrix. One node per row, one undirected edge per non-zero
// off-diagonal entry. The diagonal is ignored. Violated preconditions are
// reported as errors, never silently corrected.
func FromDense(w [][]float64) (*Graph, error) {
	n := len(w)
	for i, row := range w {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrNotSquare)
		}
	}
	var edges []edge
	for i := 0; i < n; i++ {
		if w[i][i] < 0 {
			return nil, fmt.Errorf("entry (%d,%d) = %g: %w", i, i, w[i][i], ErrNegativeWeight)
		}
		for j := i + 1; j < n; j++ {
			if w[i][j] < 0 || w[j][i] < 0 {
				return nil, fmt.Errorf("entry (%d,%d): %w", i, j, ErrNegativeWeight)
			}
			if w[i][j] != w[j][i] {
				return nil, fmt.Errorf("entries (%d,%d) and (%d,%d) differ: %w", i, j, j, i, ErrAsymmetric)
			}
			if w[i][j] != 0 {
				edges = append(edges, edge{u: int32(i), v: int32(j), w: w[i][j]})
			}
		}
	}
	return newGraph(n, edges, nil), nil
}

// Builder constructs a graph from individual edges. Errors are recorded and
// surfaced by Build, so calls can be chained.
type Builder struct {
	n     int
	edges []edge
	err   error
}

// NewBuilder returns a builder for a graph with n nodes.
func NewBuilder(n int) *Builder {
	return &Builder{n: n}
}

// AddEdge records an undirected edge between u and v. Self-loops and
// negative weights are rejected; zero-weight edges are dropped.
func (b *Builder) AddEdge(u, v int, w float64) *Builder {
	if b.err != nil {
		return b
	}
	if u < 0 || u >= b.n {
		b.err = &ErrNodeRange{Node: u, Order: b.n}
		return b
	}
	if v < 0 || v >= b.n {
		b.err = &ErrNodeRange{Node: v, Order: b.n}
		return b
	}
	if u == v {
		b.err = fmt.Errorf("edge (%d,%d): %w", u, v, ErrSelfLoop)
		return b
	}
	if w < 0 {
		b.err = fmt.Errorf("edge (%d,%d) weight %g: %w", u, v, w, ErrNegativeWeight)
		return b
	}
	if w == 0 {
		return b
	}
	b.edges = append(b.edges, edge{u: int32(u), v: int32(v), w: w})
	return b
}

// Build assembles the graph, or returns the first recorded error.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newGraph(b.n, b.edges, nil), nil
}

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.offsets) - 1 }

// Strength returns the weighted degree of node i; self-loop weight counts
// twice, matching the configuration null model.
func (g *Graph) Strength(i int) float64 { return g.strength[i] }

// SelfLoop returns the self-loop weight of node i.
func (g *Graph) SelfLoop(i int) float64 { return g.self[i] }

// TotalWeight returns the total edge weight W (each undirected edge counted
// once, self-loops once). The sum of all strengths equals 2W.
func (g *Graph) TotalWeight() float64 { return g.total / 2 }

// TotalStrength returns 2W.
func (g *Graph) TotalStrength() float64 { return g.total }

// Degree returns the number of neighbors of node i (self excluded).
func (g *Graph) Degree(i int) int { return int(g.offsets[i+1] - g.offsets[i]) }

// Neighbors returns the neighbor ids and edge weights of node i as
// sub-slices of the graph's storage. They must not be modified.
func (g *Graph) Neighbors(i int) ([]int32, []float64) {
	lo, hi := g.offsets[i], g.offsets[i+1]
	return g.nbrs[lo:hi], g.weights[lo:hi]
}

// Aggregate collapses the graph to one node per cluster of m. Inter-cluster
// edge weights are summed; intra-cluster weight (including existing
// self-loops) becomes self-loop weight. Cluster ids must be contiguous; the
// aggregated node id equals the cluster id.
func (g *Graph) Aggregate(m model.Membership) *Graph {
	k := m.NumClusters()
	self := make([]float64, k)
	acc := make(map[int64]float64)

	n := g.Order()
	for u := 0; u < n; u++ {
		cu := m[u]
		self[cu] += g.self[u]
		nbrs, ws := g.Neighbors(u)
		for p, v := range nbrs {
			if int32(u) > v {
				continue // visit each undirected edge once
			}
			cv := m[v]
			if cu == cv {
				self[cu] += ws[p]
				continue
			}
			a, b := cu, cv
			if a > b {
				a, b = b, a
			}
			acc[int64(a)<<32|int64(b)] += ws[p]
		}
	}

	keys := make([]int64, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	edges := make([]edge, len(keys))
	for i, key := range keys {
		edges[i] = edge{u: int32(key >> 32), v: int32(key & 0xffffffff), w: acc[key]}
	}
	return newGraph(k, edges, self)
}
