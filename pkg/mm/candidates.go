package mm

import (
	"fmt"
	"math"
	"sort"

	"stmatch/pkg/geo"
	"stmatch/pkg/traj"
)

// epsilon floors emission probability so its log stays finite.
const epsilon = math.SmallestNonzeroFloat64

// queryCandidates finds candidate edges for sample s: a bounding-box
// spatial index lookup, linear-reference projection onto each hit,
// distance/offset filtering, emission scoring, knn truncation, and the
// stickiness re-append of prevBest's edge when it fell outside the
// truncated set.
func (m *Matcher) queryCandidates(s traj.Sample, cfg Config, prevBest *Candidate) []Candidate {
	min := [2]float64{s.Point.X - cfg.Radius, s.Point.Y - cfg.Radius}
	max := [2]float64{s.Point.X + cfg.Radius, s.Point.Y + cfg.Radius}
	hits := m.index.Query(min, max)

	var stickyEdgeID string
	if prevBest != nil {
		stickyEdgeID = prevBest.EdgeID
	}

	candidates := make([]Candidate, 0, len(hits))
	var sticky *Candidate
	for _, idx := range hits {
		e, ok := m.network.FindEdgeByIndex(idx)
		if !ok {
			continue
		}

		distance, offset, closest, err := geo.LinearReference(s.Point, e.Geometry)
		if err != nil {
			continue
		}
		if distance > cfg.Radius {
			continue
		}
		if offset > e.Length {
			continue
		}

		c := Candidate{
			EdgeID:       e.ID,
			Distance:     distance,
			Offset:       offset,
			ClosestPoint: closest,
			Emission:     emission(distance, cfg.GPSErr),
			DummyNodeID:  dummyNodeID(closest, s.Point),
			Sample:       s,
		}
		if e.ID == stickyEdgeID {
			cc := c
			sticky = &cc
		}
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if len(candidates) > cfg.KNN {
		candidates = candidates[:cfg.KNN]
	}

	if sticky == nil {
		return candidates
	}
	for _, c := range candidates {
		if c.EdgeID == sticky.EdgeID {
			return candidates
		}
	}
	return append(candidates, *sticky)
}

// emission computes the Gaussian emission probability, floored at
// epsilon so ln(emission) is always finite.
func emission(distance, gpsErr float64) float64 {
	a := distance / gpsErr
	v := math.Exp(-0.5 * a * a)
	if v < epsilon {
		return epsilon
	}
	return v
}

// transitionProb caps the ratio of straight-line to on-graph distance
// at 1.0: a routing detour cheaper than the straight line is not
// physically possible, so treat it as a perfect transition instead.
func transitionProb(gpsDist, pathCost float64) float64 {
	if gpsDist > pathCost {
		return 1.0
	}
	return gpsDist / pathCost
}

// dummyNodeID derives a per-sample-unique virtual node id from the
// candidate's closest point and the sample's own coordinates. Two
// samples at the same coordinates projecting to the same point on the
// same edge collide deliberately (they are the same fix).
func dummyNodeID(closest, sample geo.Point) string {
	return fmt.Sprintf("%.16f-%.16f-%.16f-%.16f", closest.X, closest.Y, sample.X, sample.Y)
}
