package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/assessor/internal/assessment"
	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

type handlers struct {
	svc Service
	log *logger.Logger
}

func (h *handlers) selectNext(w http.ResponseWriter, r *http.Request) {
	var req assessment.NextRequest
	if !decode(w, r, &req) {
		return
	}
	sel, err := h.svc.SelectNext(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sel)
}

func (h *handlers) submitResponse(w http.ResponseWriter, r *http.Request) {
	var req assessment.SubmitRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SubmitResponse(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *handlers) generateFollowUp(w http.ResponseWriter, r *http.Request) {
	var req assessment.FollowUpRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.GenerateFollowUp(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) masteryStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetMasteryStatus(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "objectiveID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *handlers) calibrationReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.CalibrationReport(r.Context(), chi.URLParam(r, "learnerID"), r.URL.Query().Get("objective_id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func (h *handlers) abilityReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.AbilityReport(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "objectiveID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, calibration.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound), errors.Is(err, objectives.ErrUnknownObjective):
		return http.StatusNotFound
	case errors.Is(err, assessment.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var rangeErr *calibration.RangeError
	if errors.As(err, &rangeErr) {
		body.Field = rangeErr.Field
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	}
	respondJSON(w, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
