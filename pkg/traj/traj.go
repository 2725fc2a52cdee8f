// Package traj loads GPS trajectories from GeoJSON or WKT input.
package traj

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"stmatch/pkg/geo"
)

// ErrInvalidInput is returned for unsupported geometry types or file extensions.
var ErrInvalidInput = errors.New("traj: invalid input")

// Sample is one GPS fix: a point and its timestamp.
//
// Timestamps loaded from GeoJSON/WKT are the point's index within its
// trajectory, not a real clock reading. The first sample of every
// trajectory therefore has Time == 0, which the Matcher treats as a
// missing timestamp.
type Sample struct {
	Point geo.Point
	Time  int64
}

// Trajectory is an ordered sequence of samples.
type Trajectory []Sample

// LoadFile reads one or more trajectories from path, dispatching on its
// extension: ".geojson" uses the GeoJSON decoder, ".wkt" the WKT
// decoder. Any other extension is ErrInvalidInput.
func LoadFile(path string, r io.Reader) ([]Trajectory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("traj: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson":
		return LoadGeoJSON(data)
	case ".wkt":
		return LoadWKT(data)
	default:
		return nil, fmt.Errorf("%w: unsupported trajectory file extension %q", ErrInvalidInput, ext)
	}
}

// LoadGeoJSON parses data as a GeoJSON Geometry, Feature, or
// FeatureCollection of LineString/MultiPoint geometries, one
// trajectory per geometry encountered.
func LoadGeoJSON(data []byte) ([]Trajectory, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		trajs := make([]Trajectory, 0, len(fc.Features))
		for i, f := range fc.Features {
			tr, err := geometryToTrajectory(f.Geometry)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			trajs = append(trajs, tr)
		}
		return trajs, nil
	}

	if f, err := geojson.UnmarshalFeature(data); err == nil {
		tr, err := geometryToTrajectory(f.Geometry)
		if err != nil {
			return nil, err
		}
		return []Trajectory{tr}, nil
	}

	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: not a GeoJSON geometry, feature, or feature collection: %v", ErrInvalidInput, err)
	}
	tr, err := geometryToTrajectory(geom.Geometry())
	if err != nil {
		return nil, err
	}
	return []Trajectory{tr}, nil
}

// LoadWKT parses data as a single WKT LineString or MultiPoint geometry.
func LoadWKT(data []byte) ([]Trajectory, error) {
	geom, err := wkt.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid WKT: %v", ErrInvalidInput, err)
	}
	tr, err := geometryToTrajectory(geom)
	if err != nil {
		return nil, err
	}
	return []Trajectory{tr}, nil
}

func geometryToTrajectory(g orb.Geometry) (Trajectory, error) {
	switch v := g.(type) {
	case orb.LineString:
		return pointsToTrajectory(v), nil
	case orb.MultiPoint:
		return pointsToTrajectory(orb.LineString(v)), nil
	default:
		return nil, fmt.Errorf("%w: geometry only supports LineString or MultiPoint", ErrInvalidInput)
	}
}

func pointsToTrajectory(pts orb.LineString) Trajectory {
	tr := make(Trajectory, len(pts))
	for i, p := range pts {
		tr[i] = Sample{Point: geo.Point{X: p[0], Y: p[1]}, Time: int64(i)}
	}
	return tr
}
