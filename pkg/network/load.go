package network

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"stmatch/pkg/geo"
)

// Load reads a GeoJSON FeatureCollection of LineString edges and builds
// a Network from it. Each feature must carry string or numeric
// properties edge_id, from_node_id, to_node_id, and may carry length
// (meters, the edge's original, possibly more accurate, length) and
// name. Nodes referenced by from_node_id/to_node_id are created on
// first sight.
func Load(r io.Reader) (*Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("network: read: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse geojson: %v", ErrInvalidInput, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: feature collection has no features", ErrInvalidInput)
	}

	n := New()
	for i, f := range fc.Features {
		edge, err := featureToEdge(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		if _, ok := n.FindNodeByID(edge.From); !ok {
			if _, err := n.AddNode(edge.From); err != nil {
				return nil, fmt.Errorf("feature %d: node %q: %w", i, edge.From, err)
			}
		}
		if _, ok := n.FindNodeByID(edge.To); !ok {
			if _, err := n.AddNode(edge.To); err != nil {
				return nil, fmt.Errorf("feature %d: node %q: %w", i, edge.To, err)
			}
		}
		if _, err := n.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("feature %d: edge %q: %w", i, edge.ID, err)
		}
	}

	warnIfDisconnected(n)
	return n, nil
}

func featureToEdge(f *geojson.Feature) (Edge, error) {
	ls, ok := f.Geometry.(orb.LineString)
	if !ok {
		return Edge{}, fmt.Errorf("%w: geometry is not a LineString", ErrInvalidInput)
	}
	if len(ls) < 2 {
		return Edge{}, fmt.Errorf("%w: linestring has fewer than two vertices", geo.ErrInvalidGeometry)
	}

	pts := make([]geo.Point, len(ls))
	for i, p := range ls {
		pts[i] = geo.Point{X: p[0], Y: p[1]}
	}

	length, err := geo.PolylineLength(pts)
	if err != nil {
		return Edge{}, err
	}

	id, idOK := idProperty(f.Properties, "edge_id")
	from, fromOK := idProperty(f.Properties, "from_node_id")
	to, toOK := idProperty(f.Properties, "to_node_id")
	if !idOK || !fromOK || !toOK {
		return Edge{}, fmt.Errorf("%w: edge_id, from_node_id, and to_node_id are required", ErrInvalidInput)
	}

	oriLength := f.Properties.MustFloat64("length", length)
	name := f.Properties.MustString("name", "")

	return Edge{
		ID:        id,
		From:      from,
		To:        to,
		Length:    length,
		OriLength: oriLength,
		Kind:      Real,
		Name:      name,
		Geometry:  pts,
	}, nil
}

// idProperty reads a node/edge id property. Network files carry ids as
// bare JSON numbers (unmarshaled by encoding/json into a float64) that
// are stringified here; a JSON string value is also accepted as-is, so
// hand-written fixtures that already quote the id keep working.
func idProperty(props geojson.Properties, key string) (string, bool) {
	v, ok := props[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

// warnIfDisconnected logs a warning, without failing the load, when the
// network is not a single weakly-connected component: GPS samples that
// fall in a smaller component will never route to candidates in another.
func warnIfDisconnected(n *Network) {
	if n.NodeCount() == 0 {
		return
	}
	largest := LargestComponent(n)
	if len(largest) < n.NodeCount() {
		log.Printf("network: largest connected component has %d/%d nodes; matching across components will fail with NoPath", len(largest), n.NodeCount())
	}
}
