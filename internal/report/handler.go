package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	var generatedBy string
	if p, ok := identity.FromContext(r.Context()); ok {
		generatedBy = p.ID
	}

	report, err := h.svc.Generate(r.Context(), req, generatedBy)
	if err != nil {
		writeError(w, err, "")
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := h.svc.List(r.Context(), limit)
	if err != nil {
		apperrors.WriteError(w, apperrors.Internal(err))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, id.String())
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	data, err := h.svc.PDF(r.Context(), id)
	if err != nil {
		writeError(w, err, id.String())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report_%s.pdf"`, id))
	w.Write(data)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid report ID"))
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error, id string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		apperrors.WriteError(w, apperrors.Validation("invalid report request", verr.Fields))
	case errors.Is(err, ErrNotFound):
		apperrors.WriteError(w, apperrors.NotFound("report", id))
	case errors.Is(err, ErrGeneration):
		apperrors.WriteError(w, apperrors.Unavailable("unable to generate medical report, please try again", err))
	case errors.Is(err, ErrFontUnavailable):
		apperrors.WriteError(w, apperrors.Unavailable("PDF rendering is not available on this server", err))
	default:
		apperrors.WriteError(w, apperrors.Internal(err))
	}
}

// RegisterRoutes mounts the report endpoints. Only clinical staff may use
// them.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(identity.RequireRoles(identity.RoleDoctor, identity.RoleSurgeon, identity.RoleNurse))
		r.Post("/", h.Generate)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/pdf", h.PDF)
	})
}
