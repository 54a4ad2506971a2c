// Package model defines the shared data types of the clustering engine:
// embeddings, cluster memberships, jump-method profiles and algorithm
// identifiers.
//
// All types are value-like and owned by the call that creates them. The only
// structure that outlives its producing operation is the final Membership,
// which callers typically write back to an annotation store.
package model
