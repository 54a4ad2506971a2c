// Package store holds the annotations produced and consumed during a
// clustering run: embeddings and affinity graphs keyed by representation,
// label vectors keyed by class, calibrated resolutions and cached jump
// profiles. Annotations can be snapshotted to a blob store and loaded back.
package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/graphclust/blobstore"
	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
)

// Annotations is the mutable state shared across clustering operations.
// Thread-safe for concurrent reads and writes.
type Annotations struct {
	mu          sync.RWMutex
	embeddings  map[string]model.Matrix
	graphs      map[string]*graph.Graph
	labels      map[string]model.Membership
	resolutions map[string]float64
	jumps       map[string]*model.JumpProfile
}

// NewAnnotations creates an empty annotation store.
func NewAnnotations() *Annotations {
	return &Annotations{
		embeddings:  make(map[string]model.Matrix),
		graphs:      make(map[string]*graph.Graph),
		labels:      make(map[string]model.Membership),
		resolutions: make(map[string]float64),
		jumps:       make(map[string]*model.JumpProfile),
	}
}

// SetEmbedding stores an embedding under a representation key.
func (a *Annotations) SetEmbedding(rep string, x model.Matrix) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.embeddings[rep] = x
}

// Embedding returns the embedding for a representation.
func (a *Annotations) Embedding(rep string) (model.Matrix, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	x, ok := a.embeddings[rep]
	return x, ok
}

// SetGraph stores an affinity graph under a representation key.
func (a *Annotations) SetGraph(rep string, g *graph.Graph) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.graphs[rep] = g
}

// Graph returns the affinity graph for a representation.
func (a *Annotations) Graph(rep string) (*graph.Graph, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.graphs[rep]
	return g, ok
}

// SetLabels stores a label vector under a class label.
func (a *Annotations) SetLabels(class string, m model.Membership) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.labels[class] = m
}

// Labels returns the label vector for a class label.
func (a *Annotations) Labels(class string) (model.Membership, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.labels[class]
	return m, ok
}

// SetResolution records the resolution a class label was produced at.
func (a *Annotations) SetResolution(class string, resol float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resolutions[class] = resol
}

// Resolution returns the recorded resolution for a class label.
func (a *Annotations) Resolution(class string) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.resolutions[class]
	return r, ok
}

// SetJumpProfile caches a jump profile under a representation key.
func (a *Annotations) SetJumpProfile(rep string, p *model.JumpProfile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jumps[rep] = p
}

// JumpProfile returns the cached jump profile for a representation.
func (a *Annotations) JumpProfile(rep string) (*model.JumpProfile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.jumps[rep]
	return p, ok
}

// Classes returns the stored class labels, sorted.
func (a *Annotations) Classes() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.labels))
	for class := range a.labels {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// snapshotMagic identifies the snapshot format.
// Layout: magic (4 bytes) | compression (1 byte) | uncompressed size
// (8 bytes LE) | compressed gob payload.
var snapshotMagic = [4]byte{'G', 'C', 'S', '1'}

const snapshotHeaderSize = 13

// snapshotWire is the gob payload of a snapshot.
type snapshotWire struct {
	Embeddings  map[string]model.Matrix
	Graphs      map[string]*graph.Graph
	Labels      map[string]model.Membership
	Resolutions map[string]float64
	Jumps       map[string]*model.JumpProfile
}

// SnapshotOption configures Snapshot.
type SnapshotOption func(*snapshotOptions)

type snapshotOptions struct {
	compression Compression
}

// WithCompression overrides the default zstd snapshot compression.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) { o.compression = c }
}

// Snapshot serializes the annotations and writes them to the blob store
// under the given name.
func (a *Annotations) Snapshot(ctx context.Context, bs blobstore.Store, name string, opts ...SnapshotOption) error {
	o := snapshotOptions{compression: CompressionZSTD}
	for _, opt := range opts {
		opt(&o)
	}

	a.mu.RLock()
	wire := snapshotWire{
		Embeddings:  a.embeddings,
		Graphs:      a.graphs,
		Labels:      a.labels,
		Resolutions: a.resolutions,
		Jumps:       a.jumps,
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(wire)
	a.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	payload, err := compress(buf.Bytes(), o.compression)
	if err != nil {
		return err
	}

	blob := make([]byte, snapshotHeaderSize+len(payload))
	copy(blob, snapshotMagic[:])
	blob[4] = byte(o.compression)
	binary.LittleEndian.PutUint64(blob[5:], uint64(buf.Len()))
	copy(blob[snapshotHeaderSize:], payload)

	return bs.Put(ctx, name, blob)
}

// Load reads a snapshot from the blob store, replacing the current contents.
func (a *Annotations) Load(ctx context.Context, bs blobstore.Store, name string) error {
	blob, err := bs.Get(ctx, name)
	if err != nil {
		return err
	}
	if len(blob) < snapshotHeaderSize || !bytes.Equal(blob[:4], snapshotMagic[:]) {
		return fmt.Errorf("store: blob %q is not a snapshot", name)
	}

	compression := Compression(blob[4])
	size := binary.LittleEndian.Uint64(blob[5:])

	payload, err := decompress(blob[snapshotHeaderSize:], compression, int(size))
	if err != nil {
		return err
	}

	var wire snapshotWire
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&wire); err != nil {
		return fmt.Errorf("store: decode snapshot: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.embeddings = orEmpty(wire.Embeddings)
	a.graphs = orEmpty(wire.Graphs)
	a.labels = orEmpty(wire.Labels)
	a.resolutions = orEmpty(wire.Resolutions)
	a.jumps = orEmpty(wire.Jumps)
	return nil
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return make(map[string]V)
	}
	return m
}
