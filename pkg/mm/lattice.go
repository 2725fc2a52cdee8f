package mm

import (
	"log"
	"math"

	"stmatch/pkg/geo"
	"stmatch/pkg/traj"
)

// cell is one arena-indexed slot of the Viterbi lattice: a candidate at
// a given sample, its best cumulative log-probability so far, the
// transition log-probability that produced it, and an index into the
// previous layer's slice identifying which predecessor cell produced
// it (-1 if this is the first layer or no predecessor scored above
// -Inf).
type cell struct {
	candidate         *Candidate
	cumulative        float64
	transitionLogProb float64
	backPointer       int
}

// argmaxCell returns the index of the cell with the highest cumulative
// score in layer, or -1 if layer is empty or every cell is still at
// -Inf (no cell ever received a scored transition). Used to seed the
// stickiness candidate for the next sample's query.
func argmaxCell(layer []cell) int {
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range layer {
		if c.cumulative > bestScore {
			bestScore = c.cumulative
			best = i
		}
	}
	return best
}

// bestCell returns the index of the highest-scoring cell in layer,
// ties resolving to the first, or -1 only for an empty layer. Unlike
// argmaxCell it still picks a cell when every score sits at -Inf:
// back-tracking must report the layer's nearest candidate for such a
// sample rather than no match at all, since a fully gated transition
// step leaves every cell of the next layer unscored.
func bestCell(layer []cell) int {
	if len(layer) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(layer); i++ {
		if layer[i].cumulative > layer[best].cumulative {
			best = i
		}
	}
	return best
}

// MatchTrajectory runs ST-Matching over tr: per-sample candidate
// search, on-the-fly virtual-graph augmentation, and Viterbi decoding
// with back-tracking to the single most likely edge sequence.
func (m *Matcher) MatchTrajectory(tr traj.Trajectory, cfg Config) (*MMResult, error) {
	if len(tr) == 0 {
		return nil, ErrInvalidInput
	}

	layers := make([][]cell, len(tr))

	first := m.queryCandidates(tr[0], cfg, nil)
	if len(first) == 0 {
		log.Printf("mm: no candidate found for gps point 0")
	}
	layers[0] = make([]cell, len(first))
	for i := range first {
		c := first[i]
		if err := m.insertCandidate(&c); err != nil {
			return nil, err
		}
		layers[0][i] = cell{
			candidate:   &c,
			cumulative:  math.Log(c.Emission),
			backPointer: -1,
		}
	}

	for t := 1; t < len(tr); t++ {
		var prevBest *Candidate
		if idx := argmaxCell(layers[t-1]); idx >= 0 {
			prevBest = layers[t-1][idx].candidate
		}

		curCandidates := m.queryCandidates(tr[t], cfg, prevBest)
		if len(curCandidates) == 0 {
			log.Printf("mm: no candidate found for gps point %d", t)
			layers[t] = nil
			continue
		}
		curCells := make([]cell, len(curCandidates))
		for i := range curCells {
			curCells[i] = cell{cumulative: math.Inf(-1), backPointer: -1}
		}

		for ci := range curCandidates {
			cur := &curCandidates[ci]
			if err := m.insertCandidate(cur); err != nil {
				return nil, err
			}

			bestCumulative := math.Inf(-1)
			bestPrev := -1
			var bestTP float64

			for pi := range layers[t-1] {
				prevCell := layers[t-1][pi]
				if prevCell.candidate == nil || math.IsInf(prevCell.cumulative, -1) {
					continue
				}
				prev := prevCell.candidate

				if err := m.insertSharedEdgeBridge(prev, cur, cfg.ReverseTolerance); err != nil {
					return nil, err
				}

				gpsDist := geo.EuclideanDist(prev.Sample.Point, cur.Sample.Point)
				pathCost, err := m.graph.ShortestPath(prev.DummyNodeID, cur.DummyNodeID)
				if err != nil {
					continue
				}

				var maxGPSDist float64
				if prev.Sample.Time == 0 || cur.Sample.Time == 0 {
					maxGPSDist = gpsDist * cfg.Factor * 4.0
				} else {
					maxGPSDist = float64(cur.Sample.Time-prev.Sample.Time) * cfg.MaxSpeed * cfg.Factor
				}
				if pathCost > maxGPSDist {
					continue
				}

				tp := transitionProb(gpsDist, pathCost)
				candidateCumulative := prevCell.cumulative + math.Log(tp) + math.Log(cur.Emission)
				if candidateCumulative > bestCumulative {
					bestCumulative = candidateCumulative
					bestPrev = pi
					bestTP = tp
				}
			}

			if bestPrev == -1 {
				// Every path into cur was gated or unroutable. The cell
				// stays at -Inf: an unreached candidate must never
				// outrank one with a scored transition.
				curCells[ci] = cell{candidate: cur, cumulative: math.Inf(-1), backPointer: -1}
				continue
			}
			curCells[ci] = cell{
				candidate:         cur,
				cumulative:        bestCumulative,
				transitionLogProb: math.Log(bestTP),
				backPointer:       bestPrev,
			}
		}

		layers[t] = curCells
	}

	return m.backTrack(layers), nil
}

// backTrack walks layers from the last sample to the first, following
// each cell's backPointer into the previous layer. A cell without a
// back-pointer re-anchors on the previous layer's best cell
// (best-effort), and an empty layer breaks the chain entirely: the
// result records no matched candidate for that sample and re-anchors
// from the layer before it.
func (m *Matcher) backTrack(layers [][]cell) *MMResult {
	n := len(layers)
	res := &MMResult{
		EdgeIDs: make([]string, n),
		Matched: make([]*Candidate, n),
	}

	idx := bestCell(layers[n-1])
	for t := n - 1; t >= 0; t-- {
		layer := layers[t]
		if len(layer) == 0 || idx < 0 || idx >= len(layer) {
			idx = -1
			if t > 0 {
				idx = bestCell(layers[t-1])
			}
			continue
		}

		c := layer[idx]
		res.Matched[t] = c.candidate
		if c.candidate != nil {
			res.EdgeIDs[t] = c.candidate.EdgeID
		}
		idx = c.backPointer
		if idx < 0 && t > 0 {
			idx = bestCell(layers[t-1])
		}
	}

	return res
}
