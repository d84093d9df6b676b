package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "patient-care-portal/internal/platform/errors"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetProfile returns the caller's profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := FromContext(r.Context())
	if !ok {
		apperrors.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, p)
}

// ListRoles returns the roles a demo visitor can switch between.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"roles": Roles})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/profile", h.GetProfile)
	r.Get("/roles", h.ListRoles)
}
