package jump

import (
	"context"
	"testing"

	"github.com/hupe1980/graphclust/resource"
	"github.com/hupe1980/graphclust/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateThreeBlobs(t *testing.T) {
	// 150 points, 10 dims, 3 well-separated blobs.
	x, _ := testutil.MakeBlobs(150, 10, 3, 1, 100, 0)

	profile, err := Estimate(context.Background(), x, 10, 0, 0)
	require.NoError(t, err)

	assert.Len(t, profile.Points, 10)
	assert.Equal(t, 3, profile.OptimalK())
}

func TestEstimateDeterministic(t *testing.T) {
	x, _ := testutil.MakeBlobs(90, 4, 3, 1, 30, 7)

	a, err := Estimate(context.Background(), x, 6, 0, 42)
	require.NoError(t, err)
	b, err := Estimate(context.Background(), x, 6, 0, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Points, b.Points)
	assert.Equal(t, a.OptimalK(), b.OptimalK())
}

func TestEstimateDefaultY(t *testing.T) {
	assert.InDelta(t, 3, DefaultY(10), 1e-12)
	assert.InDelta(t, 2.0/3.0, DefaultY(2), 1e-12)
}

func TestEstimateWithController(t *testing.T) {
	x, _ := testutil.MakeBlobs(60, 3, 2, 1, 30, 3)
	c := resource.NewController(resource.Config{MaxWorkers: 2})

	profile, err := Estimate(context.Background(), x, 5, 0, 0, WithController(c))
	require.NoError(t, err)
	assert.Equal(t, 2, profile.OptimalK())
}

func TestEstimateClampsKMax(t *testing.T) {
	x, _ := testutil.MakeBlobs(4, 2, 2, 0.1, 10, 0)

	profile, err := Estimate(context.Background(), x, 10, 0, 0)
	require.NoError(t, err)
	assert.Len(t, profile.Points, 4)
}

func TestEstimateErrors(t *testing.T) {
	x, _ := testutil.MakeBlobs(10, 2, 2, 1, 10, 0)

	_, err := Estimate(context.Background(), x, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidKMax)
}

func TestEstimateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x, _ := testutil.MakeBlobs(200, 8, 4, 1, 20, 0)
	_, err := Estimate(ctx, x, 8, 0, 0)
	assert.Error(t, err)
}
