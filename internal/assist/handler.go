package assist

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-care-portal/internal/patient"
	apperrors "patient-care-portal/internal/platform/errors"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type encourageRequest struct {
	Medications []patient.Medication `json:"medications"`
}

type simplifyRequest struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type personalizeRequest struct {
	Request string `json:"request"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return false
	}
	return true
}

func (h *Handler) Encourage(w http.ResponseWriter, r *http.Request) {
	var req encourageRequest
	if !decode(w, r, &req) {
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, h.svc.Encourage(r.Context(), req.Medications))
}

func (h *Handler) AnalyzeSideEffect(w http.ResponseWriter, r *http.Request) {
	var req SideEffectReport
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.AnalyzeSideEffect(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Simplify(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if !decode(w, r, &req) {
		return
	}
	kind, err := ParseInstructionKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Simplify(r.Context(), kind, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Personalize(w http.ResponseWriter, r *http.Request) {
	var req personalizeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Personalize(r.Context(), req.Request)
	if err != nil {
		writeError(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, res)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingText):
		apperrors.WriteError(w, apperrors.Validation(err.Error(), nil))
	case errors.Is(err, ErrUnknownKind):
		apperrors.WriteError(w, apperrors.Validation(err.Error(), map[string]string{"kind": "one of pre-op, post-op, general"}))
	case errors.Is(err, ErrUnavailable):
		apperrors.WriteError(w, apperrors.Unavailable("the assistant is unavailable, please try again later", err))
	default:
		apperrors.WriteError(w, apperrors.Internal(err))
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/assist/encouragement", h.Encourage)
	r.Post("/assist/side-effects", h.AnalyzeSideEffect)
	r.Post("/assist/simplify", h.Simplify)
	r.Post("/assist/instructions", h.Personalize)
}
