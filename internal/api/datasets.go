package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
)

// requireDatasets writes a 503 when no dataset repository is configured.
func (s *Server) requireDatasets(w http.ResponseWriter) bool {
	if s.datasets == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "dataset store not configured")
		return false
	}
	return true
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatasets(w) {
		return
	}
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	defs, err := s.datasets.Datasets(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buildingid": id,
		"datasets":   defs,
	})
}

// handleSaveDataset creates or replaces the building's definition for
// {code}. The sensor code in the path wins over one in the body.
func (s *Server) handleSaveDataset(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatasets(w) {
		return
	}
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	var def chartconfig.DatasetDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	def.SensorCode = chi.URLParam(r, "code")
	def.Data = nil

	if err := s.datasets.Save(r.Context(), id, def); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.charts.Invalidate(id)

	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if !s.requireDatasets(w) {
		return
	}
	id, ok := buildingID(w, r)
	if !ok {
		return
	}

	if err := s.datasets.Delete(r.Context(), id, chi.URLParam(r, "code")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.charts.Invalidate(id)

	w.WriteHeader(http.StatusNoContent)
}
