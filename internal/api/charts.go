package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// temperatureResponse is returned by GET /buildings/{id}/temperature.
// Current is the most recent sample, null when the series is empty.
type temperatureResponse struct {
	BuildingID  int       `json:"buildingid"`
	Temperature []float64 `json:"temperature"`
	Current     *float64  `json:"current"`
}

// buildingID parses the {id} path parameter, writing a 400 on failure.
func buildingID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		writeBadRequest(w, "building id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetChartConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	cfg, err := s.charts.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleInvalidateChartConfig drops the assembled configuration so the next
// read rebuilds it from the current dataset definitions.
func (s *Server) handleInvalidateChartConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buildingid":  id,
		"invalidated": s.charts.Invalidate(id),
	})
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	series, err := s.series.Fetch(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// handleGetTemperature waits for the building's series to be cached, using
// the poll policy, and returns its temperature. A fetch runs alongside the
// poll; if it fails, the poll is cut short and the fetch error is returned.
func (s *Server) handleGetTemperature(w http.ResponseWriter, r *http.Request) {
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancelCause(r.Context())
	defer cancel(nil)

	go func() {
		// A fetch abandoned here still completes and stores the series.
		if _, err := s.series.Fetch(ctx, id); err != nil && ctx.Err() == nil {
			s.logger.Warn("series fetch failed", "building_id", id, "error", err)
			cancel(err)
		}
	}()

	temps, err := s.series.PollTemperature(ctx, id)
	if err != nil {
		if r.Context().Err() == nil && ctx.Err() != nil {
			err = context.Cause(ctx)
		}
		s.writeServiceError(w, r, err)
		return
	}

	resp := temperatureResponse{BuildingID: id, Temperature: temps}
	if n := len(temps); n > 0 {
		resp.Current = &temps[n-1]
	}
	writeJSON(w, http.StatusOK, resp)
}
