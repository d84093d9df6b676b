package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-care-portal/internal/identity"
	apperrors "patient-care-portal/internal/platform/errors"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	v, err := h.svc.Build(r.Context(), *p)
	if err != nil {
		apperrors.WriteError(w, apperrors.Internal(err))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/dashboard", h.GetDashboard)
}
