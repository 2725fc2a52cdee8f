package mm

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"stmatch/pkg/network"
	"stmatch/pkg/routing"
)

// applyVirtualEdge inserts a directed edge from -> to of the given
// length into the routing graph, creating either endpoint's node in
// the road network and the routing graph wherever it is missing. The
// edge itself is not added to the road network. The two structures' node counts are compared afterward: any
// mismatch means a caller added a node to one but not the other, which
// is an internal bug, not a recoverable condition.
//
// The edge itself is never given a persistent id: the fresh uuid here
// only names the edge in the log line and is not consulted again —
// path queries care about endpoints and weight, nothing looks a
// virtual edge up afterwards.
func (m *Matcher) applyVirtualEdge(from, to string, length float64) error {
	id := uuid.NewString()
	log.Printf("mm: inserting virtual edge %s: %s -> %s (%.2fm)", id, from, to, length)

	for _, node := range [2]string{from, to} {
		if _, ok := m.network.FindNodeByID(node); !ok {
			if _, err := m.network.AddNode(node); err != nil {
				return fmt.Errorf("mm: add network node %s: %w", node, err)
			}
		}
		if err := m.graph.AddNode(node); err != nil {
			return fmt.Errorf("mm: add routing node %s: %w", node, err)
		}
	}

	if err := m.graph.AddEdge(from, to, length); err != nil {
		return fmt.Errorf("mm: add routing edge %s->%s: %w", from, to, err)
	}

	if m.network.NodeCount() != m.graph.NodeCount() {
		return fmt.Errorf("%w: network has %d nodes, routing graph has %d after inserting %s->%s",
			ErrInternal, m.network.NodeCount(), m.graph.NodeCount(), from, to)
	}
	return nil
}

// insertCandidate wires a candidate's dummy projection node into the
// graph with two virtual edges, splitting the candidate's edge at the
// projection point: one edge from the edge's start node to the dummy
// node covering the offset already traveled, and one from the dummy
// node to the edge's end node covering what remains.
func (m *Matcher) insertCandidate(c *Candidate) error {
	e, ok := m.network.FindEdgeByID(c.EdgeID)
	if !ok {
		return fmt.Errorf("%w: candidate references unknown edge %s", network.ErrNotFound, c.EdgeID)
	}
	if err := m.applyVirtualEdge(e.From, c.DummyNodeID, c.Offset); err != nil {
		return err
	}
	remaining := e.Length - c.Offset
	if remaining < 0 {
		remaining = 0
	}
	return m.applyVirtualEdge(c.DummyNodeID, e.To, remaining)
}

// insertSharedEdgeBridge wires a direct dummy-to-dummy edge between two
// candidates known to sit on the same road edge, covering the case
// where ordinary routing through the edge's endpoints would otherwise
// force a detour around the edge the GPS track is actually following.
//
// If cur's offset is behind prev's (the track appears to have moved
// backward along the edge), that is tolerated as GPS jitter up to
// reverseTolerance meters: the bridge length is set to 1e-10 m instead
// of going negative, since the routing graph rejects negative lengths.
// At the routing graph's millimeter weight resolution that length is
// stored as 0, so such a bridge is a zero-cost edge.
func (m *Matcher) insertSharedEdgeBridge(prev, cur *Candidate, reverseTolerance float64) error {
	if prev.EdgeID != cur.EdgeID {
		return nil
	}
	delta := cur.Offset - prev.Offset
	if delta <= 0 {
		if -delta > reverseTolerance {
			return nil
		}
		delta = 1e-10
	}
	return m.applyVirtualEdge(prev.DummyNodeID, cur.DummyNodeID, delta)
}

// seedFromNetwork populates the routing graph's real edges from n,
// mirroring the network's node set 1:1 before any virtual node is ever
// inserted. Called once by New-style setup helpers, not by the Matcher
// itself mid-match.
func seedFromNetwork(n *network.Network, g *routing.Graph) error {
	for i := 0; i < n.NodeCount(); i++ {
		id, _ := n.FindNodeByIndex(i)
		if err := g.AddNode(id); err != nil {
			return fmt.Errorf("mm: seed node %s: %w", id, err)
		}
	}
	for _, e := range n.Edges() {
		if e.Kind != network.Real {
			continue
		}
		if err := g.AddEdge(e.From, e.To, e.Length); err != nil {
			return fmt.Errorf("mm: seed edge %s: %w", e.ID, err)
		}
	}
	return nil
}
