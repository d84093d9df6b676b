package consultation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"patient-care-portal/internal/identity"
	apperrors "patient-care-portal/internal/platform/errors"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

func profileID(r *http.Request) (string, bool) {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		return "", false
	}
	return p.ID, true
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	c, err := h.svc.CreateConsultation(r.Context(), pid)
	if err != nil {
		apperrors.WriteError(w, apperrors.Wrap(err, "failed to create consultation"))
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid consultation ID"))
		return
	}

	c, err := h.svc.GetConsultation(r.Context(), id, pid)
	if err != nil {
		writeError(w, err, id)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid consultation ID"))
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request"))
		return
	}

	reply, err := h.svc.Ask(r.Context(), id, pid, req.Question)
	if err != nil {
		writeError(w, err, id)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, reply)
}

func (h *Handler) QuickQuestions(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"questions": QuickQuestions})
}

func writeError(w http.ResponseWriter, err error, id uuid.UUID) {
	switch {
	case errors.Is(err, ErrNotFound):
		apperrors.WriteError(w, apperrors.NotFound("consultation", id.String()))
	case errors.Is(err, ErrForbidden):
		apperrors.WriteError(w, apperrors.Forbidden(err.Error()))
	case errors.Is(err, ErrEmptyQuestion):
		apperrors.WriteError(w, apperrors.Validation(err.Error(), map[string]string{"question": "required"}))
	default:
		apperrors.WriteError(w, apperrors.Internal(err))
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/consultations", h.CreateConsultation)
	r.Get("/consultations/quick-questions", h.QuickQuestions)
	r.Get("/consultations/{id}", h.GetConsultation)
	r.Post("/consultations/{id}/messages", h.Ask)
}
