package graphclust

import (
	"errors"
	"fmt"

	"github.com/hupe1980/graphclust/calibrate"
	"github.com/hupe1980/graphclust/detector"
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm no backend is
	// registered for.
	ErrUnknownAlgorithm = errors.New("unknown clustering algorithm")

	// ErrNoBlobStore is returned when snapshot operations run on an engine
	// built without a blob store.
	ErrNoBlobStore = errors.New("no blob store configured")
)

// ErrMissingEmbedding indicates the annotation store has no embedding for the
// requested representation. Compute neighbors/embeddings first.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMissingEmbedding struct {
	Rep   string
	cause error
}

func (e *ErrMissingEmbedding) Error() string {
	return fmt.Sprintf("missing embedding for representation %q: run neighbors first", e.Rep)
}

func (e *ErrMissingEmbedding) Unwrap() error { return e.cause }

// ErrMissingGraph indicates the annotation store has no affinity graph for
// the requested representation. Compute neighbors first.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMissingGraph struct {
	Rep   string
	cause error
}

func (e *ErrMissingGraph) Error() string {
	return fmt.Sprintf("missing affinity graph for representation %q: run neighbors first", e.Rep)
}

func (e *ErrMissingGraph) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Argument normalization from lower layers.
	if errors.Is(err, detector.ErrInvalidResolution) {
		return fmt.Errorf("invalid resolution: %w", err)
	}
	if errors.Is(err, calibrate.ErrInvalidTarget) || errors.Is(err, calibrate.ErrInvalidInterval) {
		return fmt.Errorf("invalid calibration bounds: %w", err)
	}

	return err
}
