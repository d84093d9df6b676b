package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"patient-care-portal/internal/identity"
	apperrors "patient-care-portal/internal/platform/errors"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type AssessRequest struct {
	Symptoms  []string    `json:"symptoms"`
	PainLevel json.Number `json:"pain_level"`
	Notes     string      `json:"notes"`
}

func (req AssessRequest) report() (SymptomReport, error) {
	pain, err := ParsePainLevel(req.PainLevel)
	if err != nil {
		return SymptomReport{}, err
	}
	return SymptomReport{
		Symptoms:  NewSymptomSet(req.Symptoms...),
		PainLevel: pain,
		Notes:     req.Notes,
	}, nil
}

type severityLabel struct {
	Level int    `json:"level"`
	Label string `json:"label"`
}

// Symptoms returns the symptom vocabulary and the pain scale labels.
func (h *Handler) Symptoms(w http.ResponseWriter, r *http.Request) {
	scale := make([]severityLabel, 0, MaxPainLevel+1)
	for i := MinPainLevel; i <= MaxPainLevel; i++ {
		scale = append(scale, severityLabel{Level: i, Label: PainSeverity(i)})
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"symptoms":   Vocabulary,
		"pain_scale": scale,
	})
}

func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	report, ok := decodeReport(w, r)
	if !ok {
		return
	}

	a, err := h.svc.Assess(r.Context(), report, patientName(r))
	if err != nil {
		writeError(w, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, a)
}

// AssessStream sends the urgency and the guidance as separate server-sent
// events in whichever order they resolve.
func (h *Handler) AssessStream(w http.ResponseWriter, r *http.Request) {
	report, ok := decodeReport(w, r)
	if !ok {
		return
	}
	if err := validate(report); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		apperrors.WriteError(w, apperrors.Internal(errors.New("streaming not supported")))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	events := make(chan Event)
	go func() {
		defer close(events)
		if err := h.svc.Stream(ctx, report, patientName(r), events); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("assessment stream ended early")
		}
	}()

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func decodeReport(w http.ResponseWriter, r *http.Request) (SymptomReport, bool) {
	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return SymptomReport{}, false
	}
	report, err := req.report()
	if err != nil {
		writeError(w, err)
		return SymptomReport{}, false
	}
	return report, true
}

func patientName(r *http.Request) string {
	p, ok := identity.FromContext(r.Context())
	if !ok {
		return ""
	}
	return p.FullName()
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyReport):
		apperrors.WriteError(w, apperrors.BadRequest("select at least one symptom or describe how you feel"))
	case errors.Is(err, ErrInvalidInput):
		apperrors.WriteError(w, apperrors.Validation(err.Error(), map[string]string{"pain_level": "must be an integer between 0 and 10"}))
	default:
		apperrors.WriteError(w, apperrors.Internal(err))
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/triage/symptoms", h.Symptoms)
	r.Post("/triage/assess", h.Assess)
	r.Post("/triage/assess/stream", h.AssessStream)
}
