package routing

// minHeap is a concrete-typed min-heap for path search priority
// queues, keyed on node id and an int64 millimeter cost.
type minHeap struct {
	items []pqItem
}

// pqItem is a priority queue entry: the cost to reach node via some walk.
type pqItem struct {
	node string
	cost int64
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(node string, cost int64) {
	h.items = append(h.items, pqItem{node, cost})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].cost >= h.items[parent].cost {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].cost < h.items[smallest].cost {
			smallest = left
		}
		if right < n && h.items[right].cost < h.items[smallest].cost {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
