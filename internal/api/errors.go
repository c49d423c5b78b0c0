package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
	"github.com/engineering-on-display/eod-uaa/internal/datasets"
	"github.com/engineering-on-display/eod-uaa/internal/telemetry"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeUpstream    = "upstream_error"
	ErrCodeTimeout     = "timeout"
	ErrCodeUnavailable = "unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a chart pipeline error to a response.
//
//	telemetry.FetchError           502 upstream_error
//	chartdata.RetrievalTimeoutError 504 timeout
//	context.DeadlineExceeded       504 timeout
//	chartconfig.ErrNoDatasets      404 not_found
//	datasets.ErrDatasetNotFound    404 not_found
//	datasets.ErrInvalidDataset     400 validation_error
//
// Anything else is a 500. DatasetJoinError is matched through its cause.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fetchErr *telemetry.FetchError
	var timeoutErr *chartdata.RetrievalTimeoutError

	switch {
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
	case errors.Is(err, chartconfig.ErrNoDatasets), errors.Is(err, datasets.ErrDatasetNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, datasets.ErrInvalidDataset):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}
