// Package graph provides the weighted undirected affinity graph consumed by
// community detection.
//
// Graphs are built once per embedding representation, either from a dense
// pairwise weight matrix (FromDense) or incrementally through a Builder, and
// are immutable afterwards. Edge weights are non-negative similarity scores
// and the weight assignment is symmetric by construction.
//
// Aggregate collapses a graph to one node per cluster of a partition,
// preserving total edge weight; intra-cluster weight becomes self-loop
// weight on the aggregated node. This is the reduction step behind the
// aggregate-then-refine community detection discipline.
package graph
