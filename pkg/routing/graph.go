// Package routing wraps a mutable weighted directed multigraph that the
// matcher grows on the fly as it inserts virtual nodes at each GPS
// sample's candidate projections, and answers shortest-path queries
// against it.
package routing

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
)

// ErrNoPath is returned when no path exists between two nodes.
var ErrNoPath = errors.New("routing: no path")

// ErrInternal signals a broken invariant in the caller's use of the graph.
var ErrInternal = errors.New("routing: internal invariant violated")

// millimeter scales meter-valued edge lengths into the int64 weights
// lvlath's Dijkstra operates on.
const millimeter = 1000.0

// Graph is the routing graph: a weighted, directed multigraph over
// node ids that grows monotonically as the matcher adds virtual nodes
// and edges, never shrinks.
type Graph struct {
	g *core.Graph
}

// New returns an empty routing graph. Loops are allowed: two identical
// consecutive GPS fixes bridge a virtual node to itself.
func New() *Graph {
	return &Graph{
		g: core.NewGraph(core.WithDirected(true), core.WithWeighted(), core.WithMultiEdges(), core.WithLoops()),
	}
}

// toWeight converts an edge length in meters to the integer millimeter
// weight lvlath stores. Negative lengths are rejected by the caller
// before reaching here; this only rounds.
func toWeight(lengthMeters float64) int64 {
	return int64(math.Round(lengthMeters * millimeter))
}

// NodeCount returns the number of nodes currently in the graph.
func (rg *Graph) NodeCount() int { return rg.g.VertexCount() }

// HasNode reports whether id is a node in the graph.
func (rg *Graph) HasNode(id string) bool { return rg.g.HasVertex(id) }

// AddNode inserts a node id. A no-op if it already exists.
func (rg *Graph) AddNode(id string) error {
	return rg.g.AddVertex(id)
}

// AddEdge inserts a directed edge from -> to with the given length in
// meters. Endpoints are created if missing. Returns ErrInternal if
// lengthMeters is negative: the matcher never constructs such an edge
// and a caller that does has a bug upstream.
func (rg *Graph) AddEdge(from, to string, lengthMeters float64) error {
	if lengthMeters < 0 {
		return fmt.Errorf("%w: negative edge length %f", ErrInternal, lengthMeters)
	}
	_, err := rg.g.AddEdge(from, to, toWeight(lengthMeters))
	if err != nil {
		return fmt.Errorf("routing: add edge %s->%s: %w", from, to, err)
	}
	return nil
}

// ShortestPath returns the cost in meters of the cheapest path from
// "from" to "to". Returns ErrNoPath if no path exists or either node is
// absent.
func (rg *Graph) ShortestPath(from, to string) (float64, error) {
	if !rg.g.HasVertex(from) || !rg.g.HasVertex(to) {
		return 0, ErrNoPath
	}
	dist, _, err := dijkstra.Dijkstra(rg.g, dijkstra.Source(from))
	if err != nil {
		return 0, fmt.Errorf("routing: shortest path: %w", err)
	}
	d, ok := dist[to]
	if !ok || d == math.MaxInt64 {
		return 0, ErrNoPath
	}
	return float64(d) / millimeter, nil
}
