// Package kmeans implements seeded k-means clustering (Lloyd's algorithm)
// over flat row-major float32 data.
//
// It is the shared primitive behind jump-method optimal-K estimation and
// hierarchical two-level partitioning. Fits are deterministic for a fixed
// seed: centroid initialization, empty-cluster reseeding and restart seeds
// all derive from it.
package kmeans
