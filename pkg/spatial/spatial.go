// Package spatial indexes road edges by bounding box so that candidate
// search can restrict itself to edges near a GPS sample instead of
// scanning the whole network.
package spatial

import (
	"github.com/tidwall/rtree"

	"stmatch/pkg/geo"
	"stmatch/pkg/network"
)

// Index is an R-tree over a RoadNetwork's real edges, keyed by the
// dense edge index so a hit can be resolved back to a network.Edge via
// Network.FindEdgeByIndex.
type Index struct {
	tree rtree.RTreeG[int]
}

// Build indexes every Real edge in n. Dummy edges inserted later by the
// matcher are not (and must not be) added here: the matcher queries
// candidates against the static road network only, never against its
// own virtual detours.
func Build(n *network.Network) *Index {
	idx := &Index{}
	for i, e := range n.Edges() {
		if e.Kind != network.Real {
			continue
		}
		min, max := bbox(e.Geometry)
		idx.tree.Insert(min, max, i)
	}
	return idx
}

// Query returns the dense indices of edges whose bounding box
// intersects the window [min, max] (X, Y order, matching geo.Point).
func (idx *Index) Query(min, max [2]float64) []int {
	var hits []int
	idx.tree.Search(min, max, func(_, _ [2]float64, data int) bool {
		hits = append(hits, data)
		return true
	})
	return hits
}

// Len returns the number of edges indexed.
func (idx *Index) Len() int { return idx.tree.Len() }

func bbox(pts []geo.Point) (min, max [2]float64) {
	min = [2]float64{pts[0].X, pts[0].Y}
	max = min
	for _, p := range pts[1:] {
		if p.X < min[0] {
			min[0] = p.X
		}
		if p.Y < min[1] {
			min[1] = p.Y
		}
		if p.X > max[0] {
			max[0] = p.X
		}
		if p.Y > max[1] {
			max[1] = p.Y
		}
	}
	return min, max
}
