package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilController(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	require.NoError(t, c.AcquireWorker(ctx))
	c.ReleaseWorker()
	require.NoError(t, c.WaitIO(ctx, 1<<20))
	assert.Positive(t, c.MaxWorkers())
}

func TestWorkerBudget(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquireWorker(ctx))

	// Second acquire must block until release.
	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := c.AcquireWorker(blocked)
	assert.Error(t, err)

	c.ReleaseWorker()
	require.NoError(t, c.AcquireWorker(ctx))
	c.ReleaseWorker()
}

func TestWaitIOUnlimited(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	require.NoError(t, c.WaitIO(context.Background(), 1<<30))
}

func TestWaitIOChunksLargeWrites(t *testing.T) {
	// Budget far larger than the write so the test does not stall; the
	// write exceeds burst and must be split internally.
	c := NewController(Config{MaxWorkers: 1, IOLimitBytesPerSec: 1 << 26})
	require.NoError(t, c.WaitIO(context.Background(), (1<<26)+1234))
}
