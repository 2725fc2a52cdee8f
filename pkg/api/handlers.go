package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"sync"

	"stmatch/pkg/mm"
	"stmatch/pkg/traj"
)

// Handlers holds the HTTP handlers and their dependencies. matcher is
// shared across requests and is not safe for concurrent
// MatchTrajectory calls (see mm.Matcher), so mu serializes access: the
// server's concurrency limiter bounds how many requests are in flight,
// but matching itself still runs one at a time.
type Handlers struct {
	mu       sync.Mutex
	matcher  *mm.Matcher
	defaults mm.Config
	stats    StatsResponse
}

// NewHandlers creates handlers over a Matcher built once at startup.
func NewHandlers(matcher *mm.Matcher, defaults mm.Config, stats StatsResponse) *Handlers {
	return &Handlers{matcher: matcher, defaults: defaults, stats: stats}
}

// HandleMatch handles POST /api/v1/match.
func (h *Handlers) HandleMatch(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	cfg := h.applyOverrides(req)

	var (
		trajectories []traj.Trajectory
		err          error
	)
	switch req.Format {
	case "geojson", "":
		trajectories, err = traj.LoadGeoJSON([]byte(req.Trajectory))
	case "wkt":
		trajectories, err = traj.LoadWKT([]byte(req.Trajectory))
	default:
		writeError(w, http.StatusBadRequest, "invalid_format", "format")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_trajectory", "trajectory")
		return
	}
	if len(trajectories) == 0 {
		writeError(w, http.StatusBadRequest, "empty_trajectory", "trajectory")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	resp := MatchResponse{Results: make([]TrajectoryResult, 0, len(trajectories))}
	for _, tr := range trajectories {
		result, err := h.matcher.MatchTrajectory(tr, cfg)
		if err != nil {
			if errors.Is(err, mm.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "empty_trajectory", "trajectory")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		resp.Results = append(resp.Results, toTrajectoryResult(result))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

// applyOverrides returns h.defaults with any non-nil field of req
// substituted in.
func (h *Handlers) applyOverrides(req MatchRequest) mm.Config {
	cfg := h.defaults
	if req.GPSErr != nil {
		cfg.GPSErr = *req.GPSErr
	}
	if req.Radius != nil {
		cfg.Radius = *req.Radius
	}
	if req.KNN != nil {
		cfg.KNN = *req.KNN
	}
	if req.MaxSpeed != nil {
		cfg.MaxSpeed = *req.MaxSpeed
	}
	if req.Factor != nil {
		cfg.Factor = *req.Factor
	}
	if req.ReverseTol != nil {
		cfg.ReverseTolerance = *req.ReverseTol
	}
	return cfg
}

func toTrajectoryResult(r *mm.MMResult) TrajectoryResult {
	out := TrajectoryResult{
		EdgeIDs: r.EdgeIDs,
		Matched: make([]*CandidateJSON, len(r.Matched)),
	}
	for i, c := range r.Matched {
		if c == nil {
			continue
		}
		out.Matched[i] = &CandidateJSON{
			EdgeID:     c.EdgeID,
			Distance:   c.Distance,
			Offset:     c.Offset,
			ClosestLon: c.ClosestPoint.X,
			ClosestLat: c.ClosestPoint.Y,
			Emission:   c.Emission,
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
