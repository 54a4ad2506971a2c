package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipNumClusters(t *testing.T) {
	m := Membership{0, 1, 2, 1, 0}
	assert.Equal(t, 3, m.NumClusters())
	assert.Equal(t, 0, Membership{}.NumClusters())
}

func TestMembershipCounts(t *testing.T) {
	m := Membership{0, 1, 1, 2, 2, 2}
	assert.Equal(t, []int{1, 2, 3}, m.Counts())
	assert.Equal(t, 1, m.MinClusterSize())
}

func TestMembershipCompact(t *testing.T) {
	m := Membership{5, 3, 5, 9, 3}
	c := m.Compact()
	assert.Equal(t, Membership{0, 1, 0, 2, 1}, c)
	assert.Equal(t, 3, c.NumClusters())

	// Already-contiguous memberships are unchanged.
	m2 := Membership{0, 1, 2}
	assert.Equal(t, m2, m2.Compact())
}

func TestMembershipClusterSet(t *testing.T) {
	m := Membership{0, 1, 0, 1, 0}
	bm := m.ClusterSet(0)
	assert.Equal(t, uint64(3), bm.GetCardinality())
	assert.True(t, bm.Contains(0))
	assert.True(t, bm.Contains(2))
	assert.True(t, bm.Contains(4))
	assert.False(t, bm.Contains(1))
}

func TestMembershipStrings(t *testing.T) {
	m := Membership{0, 2, 1}
	assert.Equal(t, []string{"1", "3", "2"}, m.Strings())
}

func TestSingletonsAndUniform(t *testing.T) {
	s := Singletons(3)
	assert.Equal(t, Membership{0, 1, 2}, s)
	u := Uniform(3)
	assert.Equal(t, Membership{0, 0, 0}, u)
}

func TestMatrix(t *testing.T) {
	m, err := NewMatrix([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, m.Row(1))

	sel := m.Select([]int{2, 0})
	assert.Equal(t, 2, sel.Rows)
	assert.Equal(t, []float32{5, 6}, sel.Row(0))
	assert.Equal(t, []float32{1, 2}, sel.Row(1))

	_, err = NewMatrix([]float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestJumpProfileOptimalK(t *testing.T) {
	p := &JumpProfile{Points: []JumpPoint{
		{K: 1, Distortion: 0.1, Jump: 0.1},
		{K: 2, Distortion: 0.3, Jump: 0.2},
		{K: 3, Distortion: 1.5, Jump: 1.2},
		{K: 4, Distortion: 1.9, Jump: 0.4},
	}}
	assert.Equal(t, 3, p.OptimalK())
	assert.Equal(t, []float64{0.1, 0.2, 1.2, 0.4}, p.Jumps())

	empty := &JumpProfile{}
	assert.Equal(t, 0, empty.OptimalK())
}

func TestAlgorithm(t *testing.T) {
	assert.True(t, AlgoLouvain.Valid())
	assert.True(t, AlgoSpectralLeiden.Spectral())
	assert.False(t, AlgoLeiden.Spectral())
	assert.False(t, Algorithm("kmeans").Valid())
}
