package graphclust

import (
	"context"
	"testing"

	"github.com/hupe1980/graphclust/blobstore"
	"github.com/hupe1980/graphclust/detector"
	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
	"github.com/hupe1980/graphclust/store"
	"github.com/hupe1980/graphclust/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

// blobAnnotations builds an annotation store holding a blob embedding and its
// Gaussian-kernel affinity graph under "pca".
func blobAnnotations(t *testing.T, n, dim, k int) (*store.Annotations, model.Membership) {
	t.Helper()
	x, truth := testutil.MakeBlobs(n, dim, k, 1, 50, 42)
	g, err := testutil.AffinityFromEmbedding(x, 2, 0.01)
	require.NoError(t, err)

	ann := store.NewAnnotations()
	ann.SetEmbedding("pca", x)
	ann.SetGraph("pca", g)
	return ann, truth
}

// stubDetector yields memberships as a function of resolution and records
// the resolutions it was called at.
type stubDetector struct {
	fn          func(resolution float64) model.Membership
	resolutions []float64
}

func (s *stubDetector) Name() string { return "stub" }

func (s *stubDetector) Detect(_ context.Context, _ *graph.Graph, opts detector.Options) (model.Membership, error) {
	s.resolutions = append(s.resolutions, opts.Resolution)
	return s.fn(opts.Resolution), nil
}

func stubGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(6)
	b.AddEdge(0, 1, 1).AddEdge(1, 2, 1).AddEdge(0, 2, 1)
	b.AddEdge(3, 4, 1).AddEdge(4, 5, 1).AddEdge(3, 5, 1)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestClusterDirect(t *testing.T) {
	ann, truth := blobAnnotations(t, 90, 4, 3)
	eng := New(ann)

	labels, err := eng.Cluster(context.Background(), ClusterOptions{
		Algo:       model.AlgoLouvain,
		Resolution: floatPtr(1.0),
		Seed:       1,
	})
	require.NoError(t, err)
	require.Len(t, labels, 90)

	assert.Equal(t, 3, labels.NumClusters())
	assert.GreaterOrEqual(t, testutil.AgreementRate(labels, truth), 0.95)

	// Labels are contiguous in [0, K).
	k := labels.NumClusters()
	seen := make([]bool, k)
	for _, id := range labels {
		require.GreaterOrEqual(t, id, int32(0))
		require.Less(t, int(id), k)
		seen[id] = true
	}
	for id, ok := range seen {
		assert.True(t, ok, "cluster id %d unused", id)
	}

	stored, ok := ann.Labels("louvain_labels")
	require.True(t, ok)
	assert.Equal(t, labels, stored)
	resol, ok := ann.Resolution("louvain_labels")
	require.True(t, ok)
	assert.Equal(t, 1.0, resol)
}

func TestClusterCalibrated(t *testing.T) {
	ann, _ := blobAnnotations(t, 90, 4, 3)
	eng := New(ann)

	labels, err := eng.Cluster(context.Background(), ClusterOptions{
		Algo: model.AlgoLouvain,
		KMax: 10,
		Seed: 1,
	})
	require.NoError(t, err)

	// Three well-separated blobs: the jump method estimates 3 clusters and
	// the disconnected affinity graph yields them at any resolution, so
	// calibration settles on the left edge of the interval.
	assert.Equal(t, 3, labels.NumClusters())

	p, ok := ann.JumpProfile("pca")
	require.True(t, ok)
	assert.Equal(t, 3, p.OptimalK())

	resol, ok := ann.Resolution("louvain_labels")
	require.True(t, ok)
	assert.InDelta(t, 0.01, resol, 1e-9)
}

func TestClusterSpectral(t *testing.T) {
	ann, truth := blobAnnotations(t, 90, 4, 3)
	eng := New(ann)

	// No "diffmap" embedding stored: the k-means seeding falls back to the
	// clustered representation.
	labels, err := eng.Cluster(context.Background(), ClusterOptions{
		Algo:       model.AlgoSpectralLouvain,
		Resolution: floatPtr(1.0),
		K1:         6,
		K2:         3,
		Seed:       1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, labels.NumClusters())
	assert.GreaterOrEqual(t, testutil.AgreementRate(labels, truth), 0.95)

	_, ok := ann.Labels("spectral_louvain_labels")
	assert.True(t, ok)
}

func TestClusterSingletonRetry(t *testing.T) {
	// Singleton cluster above resolution 1.15, clean split below.
	stub := &stubDetector{fn: func(resol float64) model.Membership {
		if resol > 1.15 {
			return model.Membership{0, 0, 0, 1, 1, 2}
		}
		return model.Membership{0, 0, 0, 1, 1, 1}
	}}

	ann := store.NewAnnotations()
	ann.SetGraph("pca", stubGraph(t))
	eng := New(ann, WithDetector(model.AlgoLouvain, stub))

	labels, err := eng.Cluster(context.Background(), ClusterOptions{
		Resolution: floatPtr(1.3),
	})
	require.NoError(t, err)

	assert.Greater(t, labels.MinClusterSize(), 1)
	require.Len(t, stub.resolutions, 3)
	assert.Equal(t, 1.3, stub.resolutions[0])
	for i := 1; i < len(stub.resolutions); i++ {
		assert.Less(t, stub.resolutions[i], stub.resolutions[i-1])
	}

	resol, ok := ann.Resolution("louvain_labels")
	require.True(t, ok)
	assert.InDelta(t, 1.1, resol, 1e-9)
}

func TestClusterSingletonPersists(t *testing.T) {
	// The singleton never goes away: the retry walks the resolution down to
	// the floor and accepts the result.
	stub := &stubDetector{fn: func(float64) model.Membership {
		return model.Membership{0, 0, 0, 1, 1, 2}
	}}

	ann := store.NewAnnotations()
	ann.SetGraph("pca", stubGraph(t))
	eng := New(ann, WithDetector(model.AlgoLouvain, stub))

	start := 0.5
	labels, err := eng.Cluster(context.Background(), ClusterOptions{
		Resolution: floatPtr(start),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, labels.MinClusterSize())

	// Strictly decreasing, bounded step count, floor at one decrement.
	assert.LessOrEqual(t, len(stub.resolutions), int(start/0.1)+1)
	for i := 1; i < len(stub.resolutions); i++ {
		assert.Less(t, stub.resolutions[i], stub.resolutions[i-1])
	}
	resol, ok := ann.Resolution("louvain_labels")
	require.True(t, ok)
	assert.InDelta(t, 0.1, resol, 1e-9)
}

func TestClusterErrors(t *testing.T) {
	ann := store.NewAnnotations()
	eng := New(ann)
	ctx := context.Background()

	_, err := eng.Cluster(ctx, ClusterOptions{})
	var missingGraph *ErrMissingGraph
	require.ErrorAs(t, err, &missingGraph)
	assert.Equal(t, "pca", missingGraph.Rep)

	_, err = eng.Cluster(ctx, ClusterOptions{Algo: "metis"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	// Spectral needs an embedding for seeding.
	ann.SetGraph("pca", stubGraph(t))
	_, err = eng.Cluster(ctx, ClusterOptions{
		Algo:       model.AlgoSpectralLeiden,
		Resolution: floatPtr(1.0),
	})
	var missingEmb *ErrMissingEmbedding
	assert.ErrorAs(t, err, &missingEmb)
}

func TestJumpMethodCaching(t *testing.T) {
	ann, _ := blobAnnotations(t, 60, 4, 3)
	metrics := &BasicMetricsCollector{}
	eng := New(ann, WithMetricsCollector(metrics))
	ctx := context.Background()

	p1, err := eng.JumpMethod(ctx, "pca", 8, 0, 1)
	require.NoError(t, err)
	p2, err := eng.JumpMethod(ctx, "pca", 8, 0, 1)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, int64(1), metrics.GetStats().JumpCount)

	_, err = eng.JumpMethod(ctx, "umap", 8, 0, 1)
	var missingEmb *ErrMissingEmbedding
	assert.ErrorAs(t, err, &missingEmb)
}

func TestEngineSnapshot(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	ann, _ := blobAnnotations(t, 60, 4, 3)
	eng := New(ann, WithBlobStore(bs))

	_, err := eng.Cluster(ctx, ClusterOptions{Resolution: floatPtr(1.0), Seed: 1})
	require.NoError(t, err)
	require.NoError(t, eng.Snapshot(ctx, "snapshots/v1"))

	restored := New(store.NewAnnotations(), WithBlobStore(bs))
	require.NoError(t, restored.LoadSnapshot(ctx, "snapshots/v1"))

	want, _ := ann.Labels("louvain_labels")
	got, ok := restored.Annotations().Labels("louvain_labels")
	require.True(t, ok)
	assert.Equal(t, want, got)

	bare := New(store.NewAnnotations())
	assert.ErrorIs(t, bare.Snapshot(ctx, "x"), ErrNoBlobStore)
	assert.ErrorIs(t, bare.LoadSnapshot(ctx, "x"), ErrNoBlobStore)
}

func TestClusterMetrics(t *testing.T) {
	ann, _ := blobAnnotations(t, 60, 4, 3)
	metrics := &BasicMetricsCollector{}
	eng := New(ann, WithMetricsCollector(metrics))

	_, err := eng.Cluster(context.Background(), ClusterOptions{
		Algo: model.AlgoLeiden,
		KMax: 6,
		Seed: 3,
	})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.JumpCount)
	assert.Equal(t, int64(1), stats.CalibrationCount)
	assert.Greater(t, stats.DetectCount, int64(0))
}
