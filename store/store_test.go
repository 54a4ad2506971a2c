package store

import (
	"context"
	"testing"

	"github.com/hupe1980/graphclust/blobstore"
	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnnotations(t *testing.T) *Annotations {
	t.Helper()

	b := graph.NewBuilder(4)
	b.AddEdge(0, 1, 1).AddEdge(1, 2, 0.5).AddEdge(2, 3, 2)
	g, err := b.Build()
	require.NoError(t, err)

	a := NewAnnotations()
	a.SetEmbedding("pca", model.Matrix{Data: []float32{1, 2, 3, 4, 5, 6, 7, 8}, Rows: 4, Cols: 2})
	a.SetGraph("pca", g)
	a.SetLabels("louvain_labels", model.Membership{0, 0, 1, 1})
	a.SetResolution("louvain_labels", 1.15)
	a.SetJumpProfile("pca", &model.JumpProfile{
		Y: 3,
		Points: []model.JumpPoint{
			{K: 1, Distortion: 0.5},
			{K: 2, Distortion: 2.0},
		},
	})
	return a
}

func TestAnnotationsAccessors(t *testing.T) {
	a := sampleAnnotations(t)

	x, ok := a.Embedding("pca")
	require.True(t, ok)
	assert.Equal(t, 4, x.Rows)

	_, ok = a.Embedding("umap")
	assert.False(t, ok)

	g, ok := a.Graph("pca")
	require.True(t, ok)
	assert.Equal(t, 4, g.Order())

	m, ok := a.Labels("louvain_labels")
	require.True(t, ok)
	assert.Equal(t, 2, m.NumClusters())

	r, ok := a.Resolution("louvain_labels")
	require.True(t, ok)
	assert.Equal(t, 1.15, r)

	p, ok := a.JumpProfile("pca")
	require.True(t, ok)
	assert.Equal(t, float64(3), p.Y)

	assert.Equal(t, []string{"louvain_labels"}, a.Classes())
}

func TestSnapshotRoundtrip(t *testing.T) {
	for name, opt := range map[string][]SnapshotOption{
		"zstd": nil,
		"lz4":  {WithCompression(CompressionLZ4)},
		"none": {WithCompression(CompressionNone)},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bs := blobstore.NewMemoryStore()
			a := sampleAnnotations(t)

			require.NoError(t, a.Snapshot(ctx, bs, "snapshots/v1", opt...))

			loaded := NewAnnotations()
			require.NoError(t, loaded.Load(ctx, bs, "snapshots/v1"))

			x, ok := loaded.Embedding("pca")
			require.True(t, ok)
			orig, _ := a.Embedding("pca")
			assert.Equal(t, orig, x)

			g, ok := loaded.Graph("pca")
			require.True(t, ok)
			origG, _ := a.Graph("pca")
			assert.Equal(t, origG.TotalWeight(), g.TotalWeight())
			assert.Equal(t, origG.Order(), g.Order())

			m, ok := loaded.Labels("louvain_labels")
			require.True(t, ok)
			assert.Equal(t, model.Membership{0, 0, 1, 1}, m)

			r, ok := loaded.Resolution("louvain_labels")
			require.True(t, ok)
			assert.Equal(t, 1.15, r)

			p, ok := loaded.JumpProfile("pca")
			require.True(t, ok)
			assert.Len(t, p.Points, 2)
		})
	}
}

func TestSnapshotCompressionShrinks(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	a := NewAnnotations()
	// Highly redundant payload so both codecs have something to compress.
	data := make([]float32, 10000)
	a.SetEmbedding("pca", model.Matrix{Data: data, Rows: 100, Cols: 100})

	require.NoError(t, a.Snapshot(ctx, bs, "zstd", WithCompression(CompressionZSTD)))
	require.NoError(t, a.Snapshot(ctx, bs, "raw", WithCompression(CompressionNone)))

	compressed, err := bs.Get(ctx, "zstd")
	require.NoError(t, err)
	raw, err := bs.Get(ctx, "raw")
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(raw))
}

func TestLoadRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "bad", []byte("not a snapshot")))

	a := NewAnnotations()
	assert.Error(t, a.Load(ctx, bs, "bad"))

	assert.ErrorIs(t, a.Load(ctx, bs, "missing"), blobstore.ErrNotFound)
}

func TestLoadReplacesContents(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	a := sampleAnnotations(t)
	require.NoError(t, a.Snapshot(ctx, bs, "v1"))

	b := NewAnnotations()
	b.SetLabels("stale", model.Membership{0})
	require.NoError(t, b.Load(ctx, bs, "v1"))

	_, ok := b.Labels("stale")
	assert.False(t, ok)
	_, ok = b.Labels("louvain_labels")
	assert.True(t, ok)
}
