package detector

import (
	"context"
	"math/rand"
	"testing"

	"github.com/hupe1980/graphclust/graph"
	"github.com/hupe1980/graphclust/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCliques builds two 4-cliques joined by a single weak bridge.
func twoCliques(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(8)
	for _, base := range []int{0, 4} {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				b.AddEdge(base+i, base+j, 1)
			}
		}
	}
	b.AddEdge(3, 4, 0.1)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestLocalMoveFindsCliques(t *testing.T) {
	g := twoCliques(t)
	labels := model.Singletons(8)

	moved, err := LocalMove(context.Background(), g, labels, 1, rand.New(rand.NewSource(0)), 0)
	require.NoError(t, err)
	assert.True(t, moved)

	labels = labels.Compact()
	assert.Equal(t, 2, labels.NumClusters())
	for i := 1; i < 4; i++ {
		assert.Equal(t, labels[0], labels[i])
	}
	for i := 5; i < 8; i++ {
		assert.Equal(t, labels[4], labels[i])
	}
	assert.NotEqual(t, labels[0], labels[4])
}

func TestLocalMoveImprovesQuality(t *testing.T) {
	g := twoCliques(t)
	before := Quality(g, model.Singletons(8), 1)

	labels := model.Singletons(8)
	_, err := LocalMove(context.Background(), g, labels, 1, rand.New(rand.NewSource(3)), 0)
	require.NoError(t, err)

	assert.Greater(t, Quality(g, labels, 1), before)
}

func TestLocalMoveDeterministic(t *testing.T) {
	g := twoCliques(t)

	a := model.Singletons(8)
	_, err := LocalMove(context.Background(), g, a, 1, rand.New(rand.NewSource(5)), 0)
	require.NoError(t, err)

	b := model.Singletons(8)
	_, err = LocalMove(context.Background(), g, b, 1, rand.New(rand.NewSource(5)), 0)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLocalMoveEmptyGraph(t *testing.T) {
	g, err := graph.NewBuilder(0).Build()
	require.NoError(t, err)

	moved, err := LocalMove(context.Background(), g, model.Membership{}, 1, rand.New(rand.NewSource(0)), 0)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestLocalMoveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := twoCliques(t)
	_, err := LocalMove(ctx, g, model.Singletons(8), 1, rand.New(rand.NewSource(0)), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQualityPrefersTrueSplit(t *testing.T) {
	g := twoCliques(t)
	split := model.Membership{0, 0, 0, 0, 1, 1, 1, 1}
	merged := model.Uniform(8)
	shuffledSplit := model.Membership{0, 1, 0, 1, 0, 1, 0, 1}

	assert.Greater(t, Quality(g, split, 1), Quality(g, merged, 1))
	assert.Greater(t, Quality(g, split, 1), Quality(g, shuffledSplit, 1))
}
