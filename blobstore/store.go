// Package blobstore abstracts durable storage for clustering snapshots.
//
// Snapshots are written and read as whole blobs, so the interface trades
// streaming granularity for simplicity. Backends exist for memory (tests),
// the local filesystem, S3 and MinIO.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing snapshot blobs.
type Store interface {
	// Put writes a blob atomically, replacing any existing blob of the
	// same name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a whole blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a blob. Removing a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
