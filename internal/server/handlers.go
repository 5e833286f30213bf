package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vector76/catchup/internal/catchup"
	"github.com/vector76/catchup/internal/metrics"
	"github.com/vector76/catchup/internal/model"
)

// maxBodyBytes caps the size of a catch-up request body.
const maxBodyBytes = 1 << 20

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, msg, details string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg, Details: details})
}

// jsonOK writes a JSON response with status 200.
func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleCatchUp handles POST /api/catchup.
func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	var req model.CatchUpRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		metrics.RecordRequest(metrics.ResultBadInput)
		jsonError(w, "Invalid JSON", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.svc.CatchUp(r.Context(), req)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("catch-up failed",
				"industry", req.Industry,
				"time_period", req.TimePeriod,
				"error", err)
		}
		jsonError(w, body.Error, body.Details, status)
		return
	}

	jsonOK(w, resp)
}

// errorResponse maps a service error to a status code and error body.
func errorResponse(err error) (int, model.ErrorResponse) {
	var verr *catchup.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, model.ErrorResponse{Error: verr.Error(), Details: verr.Details}
	}
	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   "Failed to generate summary",
		Details: err.Error(),
	}
}
