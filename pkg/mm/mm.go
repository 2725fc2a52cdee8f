// Package mm implements the ST-Matching map-matcher: per-sample
// candidate search against a spatial index, emission/transition
// scoring under a Hidden Markov Model, on-the-fly augmentation of a
// routing graph with virtual nodes, and Viterbi decoding with
// back-tracking to the most likely edge sequence.
package mm

import (
	"errors"

	"stmatch/pkg/geo"
	"stmatch/pkg/network"
	"stmatch/pkg/routing"
	"stmatch/pkg/spatial"
	"stmatch/pkg/traj"
)

// ErrInvalidInput is returned for an empty trajectory.
var ErrInvalidInput = errors.New("mm: invalid input")

// ErrInternal signals a broken node-count invariant between the road
// network and the routing graph.
var ErrInternal = errors.New("mm: internal invariant violated")

// Config holds the matcher's tunables. Flag names in cmd/stmatch
// mirror these fields one-for-one.
type Config struct {
	GPSErr           float64 // emission std-dev, same units as LinearReference distance
	Radius           float64 // candidate search half-side, coordinate (degree) units
	KNN              int     // candidates kept per sample before stickiness
	MaxSpeed         float64 // coordinate-units per time-unit
	Factor           float64 // slack multiplier on the max-gps-distance gate
	ReverseTolerance float64 // meters of backward jitter tolerated on a shared edge
}

// DefaultConfig returns the CLI defaults.
func DefaultConfig() Config {
	return Config{
		GPSErr:           1e-4,
		Radius:           1e-2,
		KNN:              4,
		MaxSpeed:         30.0,
		Factor:           4.0,
		ReverseTolerance: 4.0,
	}
}

// Candidate is a projection of one GPS sample onto one road edge.
type Candidate struct {
	EdgeID       string
	Distance     float64 // perpendicular distance, meters
	Offset       float64 // along-edge offset from edge.From, meters
	ClosestPoint geo.Point
	Emission     float64
	DummyNodeID  string
	Sample       traj.Sample
}

// MMResult is the matcher's output: one edge id and (if matched) one
// Candidate per input sample, in original sample order.
type MMResult struct {
	EdgeIDs []string
	Matched []*Candidate
}

// Matcher orchestrates matching against one road network, spatial
// index, and routing graph. It is not safe for concurrent
// MatchTrajectory calls: a match mutates the shared RoutingGraph and
// RoadNetwork by inserting virtual nodes, and those structures have a
// single owner for the duration of the call.
type Matcher struct {
	network *network.Network
	index   *spatial.Index
	graph   *routing.Graph
}

// New builds a Matcher over an already-loaded network and its spatial
// index, seeding a fresh routing graph with the network's real edges.
func New(n *network.Network, idx *spatial.Index) (*Matcher, error) {
	g := routing.New()
	if err := seedFromNetwork(n, g); err != nil {
		return nil, err
	}
	return &Matcher{network: n, index: idx, graph: g}, nil
}
