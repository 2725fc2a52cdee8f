package geo

import (
	"errors"
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		a, b             Point
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name:             "Singapore CBD to Changi Airport",
			a:                Point{X: 103.8513, Y: 1.2830},
			b:                Point{X: 103.9915, Y: 1.3644},
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name:             "same point",
			a:                Point{X: 103.8198, Y: 1.3521},
			b:                Point{X: 103.8198, Y: 1.3521},
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name:             "London to Paris",
			a:                Point{X: -0.1278, Y: 51.5074},
			b:                Point{X: 2.3522, Y: 48.8566},
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("Haversine = %f, want 0", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestPolylineLength(t *testing.T) {
	if _, err := PolylineLength([]Point{{X: 0, Y: 0}}); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("PolylineLength with 1 vertex: err = %v, want ErrInvalidGeometry", err)
	}

	pts := []Point{{X: 0, Y: 0}, {X: 0, Y: 0.01}, {X: 0, Y: 0.02}}
	got, err := PolylineLength(pts)
	if err != nil {
		t.Fatalf("PolylineLength: %v", err)
	}
	want := Haversine(pts[0], pts[1]) + Haversine(pts[1], pts[2])
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("PolylineLength = %f, want %f", got, want)
	}
}

func TestLinearReference(t *testing.T) {
	// Single segment E1 from (0,0) to (0,0.01), matching the S1 scenario geometry.
	line := []Point{{X: 0, Y: 0}, {X: 0, Y: 0.01}}

	tests := []struct {
		name       string
		q          Point
		wantOffset float64 // approx, in meters
		maxDist    float64
	}{
		{name: "at start", q: Point{X: 0, Y: 0}, wantOffset: 0, maxDist: 1},
		{name: "at end", q: Point{X: 0, Y: 0.01}, wantOffset: 1113, maxDist: 1},
		{name: "midpoint, offset to the side", q: Point{X: 0.00001, Y: 0.005}, wantOffset: 556, maxDist: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, offset, closest, err := LinearReference(tt.q, line)
			if err != nil {
				t.Fatalf("LinearReference: %v", err)
			}
			if dist > tt.maxDist {
				t.Errorf("dist = %f, want <= %f", dist, tt.maxDist)
			}
			if math.Abs(offset-tt.wantOffset) > 50 {
				t.Errorf("offset = %f, want ~%f", offset, tt.wantOffset)
			}
			if closest.X < -1 || closest.X > 1 {
				t.Errorf("closest point looks wrong: %+v", closest)
			}
		})
	}
}

func TestLinearReferenceDegenerateSegment(t *testing.T) {
	line := []Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0.01}}
	dist, offset, _, err := LinearReference(Point{X: 0.0001, Y: 0}, line)
	if err != nil {
		t.Fatalf("LinearReference: %v", err)
	}
	if offset != 0 {
		t.Errorf("offset for degenerate leading segment = %f, want 0", offset)
	}
	if dist <= 0 {
		t.Errorf("dist = %f, want > 0", dist)
	}
}

func TestLinearReferenceInvalidGeometry(t *testing.T) {
	_, _, _, err := LinearReference(Point{}, []Point{{X: 0, Y: 0}})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestEuclideanDist(t *testing.T) {
	got := EuclideanDist(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if got != 5 {
		t.Errorf("EuclideanDist = %f, want 5", got)
	}
}
