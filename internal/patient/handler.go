package patient

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

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.ListPatients(r.Context())
	if err != nil {
		apperrors.WriteError(w, apperrors.Internal(err))
		return
	}
	if patients == nil {
		patients = []Patient{}
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

func (h *Handler) GetCareSummary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid patient id"))
		return
	}

	summary, err := h.svc.CareSummary(r.Context(), id)
	if err != nil {
		writeError(w, err, "patient", id.String())
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, summary)
}

type setTakenRequest struct {
	Taken bool `json:"taken"`
}

// SetMedicationTaken records whether a medication was taken today.
func (h *Handler) SetMedicationTaken(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid patient id"))
		return
	}
	medID, err := uuid.Parse(chi.URLParam(r, "medicationID"))
	if err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid medication id"))
		return
	}

	var req setTakenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}

	summary, err := h.svc.SetMedicationTaken(r.Context(), patientID, medID, req.Taken)
	if err != nil {
		writeError(w, err, "medication", medID.String())
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, summary)
}

func writeError(w http.ResponseWriter, err error, resource, id string) {
	if errors.Is(err, ErrNotFound) {
		apperrors.WriteError(w, apperrors.NotFound(resource, id))
		return
	}
	apperrors.WriteError(w, apperrors.Internal(err))
}

// RegisterRoutes mounts the patient endpoints. The roster is limited to care
// staff and caregivers.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.With(identity.RequireRoles(
		identity.RoleDoctor, identity.RoleSurgeon, identity.RoleNurse, identity.RoleCareGiver,
	)).Get("/patients", h.ListPatients)
	r.Get("/patients/{id}", h.GetCareSummary)
	r.Put("/patients/{id}/medications/{medicationID}/taken", h.SetMedicationTaken)
}
