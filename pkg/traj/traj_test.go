package traj

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadGeoJSONFeatureCollection(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0.00001, 0.002], [0.00001, 0.008]]}}
		]
	}`)

	trajs, err := LoadGeoJSON(data)
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if len(trajs) != 1 {
		t.Fatalf("len(trajs) = %d, want 1", len(trajs))
	}
	if len(trajs[0]) != 2 {
		t.Fatalf("len(trajs[0]) = %d, want 2", len(trajs[0]))
	}
	if trajs[0][0].Time != 0 || trajs[0][1].Time != 1 {
		t.Errorf("timestamps = [%d, %d], want [0, 1]", trajs[0][0].Time, trajs[0][1].Time)
	}
	if trajs[0][0].Point.Y != 0.002 {
		t.Errorf("first sample Y = %f, want 0.002", trajs[0][0].Point.Y)
	}
}

func TestLoadGeoJSONMultiPoint(t *testing.T) {
	data := []byte(`{"type": "Feature", "properties": {}, "geometry": {"type": "MultiPoint", "coordinates": [[0, 0], [1, 1], [2, 2]]}}`)
	trajs, err := LoadGeoJSON(data)
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if len(trajs) != 1 || len(trajs[0]) != 3 {
		t.Fatalf("trajs = %+v, want 1 trajectory of 3 samples", trajs)
	}
}

func TestLoadGeoJSONRejectsPoint(t *testing.T) {
	data := []byte(`{"type": "Point", "coordinates": [0, 0]}`)
	_, err := LoadGeoJSON(data)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoadWKTLineString(t *testing.T) {
	trajs, err := LoadWKT([]byte("LINESTRING (0 0, 0 0.01)"))
	if err != nil {
		t.Fatalf("LoadWKT: %v", err)
	}
	if len(trajs) != 1 || len(trajs[0]) != 2 {
		t.Fatalf("trajs = %+v, want 1 trajectory of 2 samples", trajs)
	}
}

func TestLoadFileDispatchesOnExtension(t *testing.T) {
	geojsonData := `{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0,0],[0,1]]}}`
	trajs, err := LoadFile("trip.geojson", strings.NewReader(geojsonData))
	if err != nil {
		t.Fatalf("LoadFile geojson: %v", err)
	}
	if len(trajs) != 1 {
		t.Fatalf("trajs = %+v", trajs)
	}

	_, err = LoadFile("trip.kml", strings.NewReader(geojsonData))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput for unsupported extension", err)
	}
}
