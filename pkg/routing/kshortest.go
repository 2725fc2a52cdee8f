package routing

import "fmt"

// KShortestPath returns the cost, in meters, of the k-th cheapest walk
// from "from" to "to" (walks may revisit nodes; this is not Yen's
// loopless-path algorithm). It is an alternative scoring hook the
// matcher does not call on its default path.
//
// k must be >= 1; k == 1 is equivalent to ShortestPath. Walks of equal
// cost each count toward k, so the k-th cost may equal the (k-1)-th.
// Returns ErrNoPath if fewer than k walks reach "to".
func (rg *Graph) KShortestPath(from, to string, k int) (float64, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: k must be >= 1, got %d", ErrInternal, k)
	}
	if !rg.g.HasVertex(from) || !rg.g.HasVertex(to) {
		return 0, ErrNoPath
	}

	settled := make(map[string]int)
	var h minHeap
	h.Push(from, 0)

	for h.Len() > 0 {
		item := h.Pop()
		u, cost := item.node, item.cost

		if settled[u] >= k {
			continue
		}
		settled[u]++

		if u == to && settled[u] == k {
			return float64(cost) / millimeter, nil
		}

		edges, err := rg.g.Neighbors(u)
		if err != nil {
			continue
		}
		for _, e := range edges {
			if e.From != u {
				continue
			}
			if settled[e.To] >= k {
				continue
			}
			h.Push(e.To, cost+e.Weight)
		}
	}

	return 0, ErrNoPath
}
