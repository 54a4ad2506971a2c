package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSquare is returned when a weight matrix is not square.
	ErrNotSquare = errors.New("weight matrix is not square")

	// ErrAsymmetric is returned when a weight matrix is not symmetric.
	ErrAsymmetric = errors.New("weight matrix is not symmetric")

	// ErrNegativeWeight is returned when an edge weight is negative.
	ErrNegativeWeight = errors.New("negative edge weight")

	// ErrSelfLoop is returned when an edge connects a node to itself.
	ErrSelfLoop = errors.New("self-loop edge")
)

// ErrNodeRange indicates an edge endpoint outside [0, n).
//
// The graph order it was checked against is carried for diagnostics.
type ErrNodeRange struct {
	Node  int
	Order int
}

func (e *ErrNodeRange) Error() string {
	return fmt.Sprintf("node %d out of range [0, %d)", e.Node, e.Order)
}
