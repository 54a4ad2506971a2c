package model

import (
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
)

// Membership maps entity index to cluster id. Cluster ids are non-negative
// and, for any membership returned by this module, contiguous starting at 0.
type Membership []int32

// NumClusters returns the number of distinct cluster ids, assuming contiguous
// ids starting at 0 (max id + 1). Empty memberships have zero clusters.
func (m Membership) NumClusters() int {
	maxID := int32(-1)
	for _, id := range m {
		if id > maxID {
			maxID = id
		}
	}
	return int(maxID + 1)
}

// Counts returns the member count per cluster id.
func (m Membership) Counts() []int {
	counts := make([]int, m.NumClusters())
	for _, id := range m {
		counts[id]++
	}
	return counts
}

// MinClusterSize returns the size of the smallest cluster, or 0 for an empty
// membership.
func (m Membership) MinClusterSize() int {
	counts := m.Counts()
	if len(counts) == 0 {
		return 0
	}
	min := counts[0]
	for _, c := range counts[1:] {
		if c < min {
			min = c
		}
	}
	return min
}

// Compact renumbers cluster ids to be contiguous starting at 0, preserving
// the order of first appearance. It returns a new membership.
func (m Membership) Compact() Membership {
	out := make(Membership, len(m))
	remap := make(map[int32]int32, 16)
	next := int32(0)
	for i, id := range m {
		nid, ok := remap[id]
		if !ok {
			nid = next
			remap[id] = nid
			next++
		}
		out[i] = nid
	}
	return out
}

// ClusterSet returns the set of entity indices assigned to cluster id as a
// roaring bitmap.
func (m Membership) ClusterSet(id int32) *roaring.Bitmap {
	bm := roaring.New()
	for i, c := range m {
		if c == id {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Strings returns 1-based display labels ("1", "2", ...), the conventional
// presentation for cluster annotations.
func (m Membership) Strings() []string {
	out := make([]string, len(m))
	for i, id := range m {
		out[i] = strconv.Itoa(int(id) + 1)
	}
	return out
}

// Clone returns a copy of the membership.
func (m Membership) Clone() Membership {
	out := make(Membership, len(m))
	copy(out, m)
	return out
}

// Singletons returns a membership over n entities where every entity is its
// own cluster.
func Singletons(n int) Membership {
	m := make(Membership, n)
	for i := range m {
		m[i] = int32(i)
	}
	return m
}

// Uniform returns a membership over n entities all assigned to cluster 0.
func Uniform(n int) Membership {
	return make(Membership, n)
}
