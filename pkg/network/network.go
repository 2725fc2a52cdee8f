// Package network holds the immutable-after-load road network: a
// directed multigraph of geodesic edges with stable id<->index
// mappings for nodes and edges.
package network

import (
	"errors"

	"stmatch/pkg/geo"
)

// ErrInvalidInput is returned for malformed or empty network input.
var ErrInvalidInput = errors.New("network: invalid input")

// ErrDuplicateID is returned when a node or edge id already exists.
var ErrDuplicateID = errors.New("network: duplicate id")

// ErrNotFound is returned when a node or edge lookup fails where required.
var ErrNotFound = errors.New("network: not found")

// Kind distinguishes real road segments from virtual edges inserted by
// the matcher at candidate projections.
type Kind int

const (
	Real Kind = iota
	Dummy
)

func (k Kind) String() string {
	if k == Dummy {
		return "dummy"
	}
	return "real"
}

// Edge is a directed road segment.
type Edge struct {
	ID        string
	From, To  string
	Length    float64 // meters; haversine length of Geometry, or an override for virtual edges
	OriLength float64 // meters; the original property value, preserved across virtual-edge construction
	Kind      Kind
	Name      string
	Geometry  []geo.Point // ordered polyline, >= 2 vertices for Real edges
}

// Network is the directed multigraph of road edges, loaded once and not
// mutated thereafter except by the matcher adding virtual nodes that
// mirror insertions into the routing graph (see pkg/routing).
type Network struct {
	edgesByID    map[string]int
	nodesByID    map[string]int
	nodesByIndex []string
	edges        []Edge
}

// New returns an empty Network.
func New() *Network {
	return &Network{
		edgesByID: make(map[string]int),
		nodesByID: make(map[string]int),
	}
}

// FindEdgeByID returns the edge with the given id, if any.
func (n *Network) FindEdgeByID(id string) (Edge, bool) {
	idx, ok := n.edgesByID[id]
	if !ok {
		return Edge{}, false
	}
	return n.edges[idx], true
}

// FindEdgeByIndex returns the edge at the given dense index, if any.
func (n *Network) FindEdgeByIndex(i int) (Edge, bool) {
	if i < 0 || i >= len(n.edges) {
		return Edge{}, false
	}
	return n.edges[i], true
}

// FindNodeByID returns the dense index of the node with the given id, if any.
func (n *Network) FindNodeByID(id string) (int, bool) {
	idx, ok := n.nodesByID[id]
	return idx, ok
}

// FindNodeByIndex returns the id of the node at the given dense index, if any.
func (n *Network) FindNodeByIndex(i int) (string, bool) {
	if i < 0 || i >= len(n.nodesByIndex) {
		return "", false
	}
	return n.nodesByIndex[i], true
}

// AddNode registers a new node id, returning its dense index.
// Returns ErrDuplicateID if the id is already present.
func (n *Network) AddNode(id string) (int, error) {
	if _, exists := n.nodesByID[id]; exists {
		return 0, ErrDuplicateID
	}
	idx := len(n.nodesByIndex)
	n.nodesByIndex = append(n.nodesByIndex, id)
	n.nodesByID[id] = idx
	return idx, nil
}

// AddEdge registers a new edge, returning its dense index.
// Returns ErrDuplicateID if the edge id is already present.
// Does not implicitly create From/To nodes: callers that need that
// (e.g. the routing graph) must add them first.
func (n *Network) AddEdge(e Edge) (int, error) {
	if _, exists := n.edgesByID[e.ID]; exists {
		return 0, ErrDuplicateID
	}
	idx := len(n.edges)
	n.edges = append(n.edges, e)
	n.edgesByID[e.ID] = idx
	return idx, nil
}

// NodeCount returns the number of registered nodes.
func (n *Network) NodeCount() int { return len(n.nodesByIndex) }

// EdgeCount returns the number of registered edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Edges returns all registered edges in insertion order. Callers must
// not mutate the returned slice's elements' Geometry in place.
func (n *Network) Edges() []Edge { return n.edges }
