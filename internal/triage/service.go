package triage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"patient-care-portal/internal/agent"
	"patient-care-portal/internal/platform/metrics"
)

// ErrEmptyReport is returned when a report has neither symptoms nor notes.
var ErrEmptyReport = errors.New("symptom report is empty")

const alertTimeout = 10 * time.Second

// Alerter posts a message to the care-team channel.
type Alerter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Assessment is the combined result of one symptom report.
type Assessment struct {
	Urgency                   UrgencyLevel `json:"urgency"`
	Label                     string       `json:"label"`
	RequiresEmergencyProtocol bool         `json:"requires_emergency_protocol"`
	EmergencyProtocol         string       `json:"emergency_protocol,omitempty"`
	PainLevel                 int          `json:"pain_level"`
	PainSeverity              string       `json:"pain_severity"`
	Symptoms                  []string     `json:"symptoms"`
	Guidance                  string       `json:"guidance"`
	GuidanceFallback          bool         `json:"guidance_fallback"`
	AssessedAt                time.Time    `json:"assessed_at"`
}

// UrgencyResult is the classifier half of an assessment.
type UrgencyResult struct {
	Urgency                   UrgencyLevel `json:"urgency"`
	Label                     string       `json:"label"`
	RequiresEmergencyProtocol bool         `json:"requires_emergency_protocol"`
	EmergencyProtocol         string       `json:"emergency_protocol,omitempty"`
	PainSeverity              string       `json:"pain_severity"`
}

// GuidanceResult is the completion half of an assessment.
type GuidanceResult struct {
	Guidance string `json:"guidance"`
	Fallback bool   `json:"fallback"`
}

const (
	EventUrgency  = "urgency"
	EventGuidance = "guidance"
)

// Event is one streamed assessment result.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Service interface {
	Assess(ctx context.Context, report SymptomReport, patient string) (*Assessment, error)
	Stream(ctx context.Context, report SymptomReport, patient string, events chan<- Event) error
}

type service struct {
	completer agent.Completer
	alerter   Alerter
	chatID    int64
}

// NewService wires the assessment service. alerter may be nil, in which case
// emergencies are only logged.
func NewService(completer agent.Completer, alerter Alerter, careTeamChatID int64) Service {
	return &service{
		completer: completer,
		alerter:   alerter,
		chatID:    careTeamChatID,
	}
}

func validate(report SymptomReport) error {
	if report.Empty() {
		return ErrEmptyReport
	}
	return ValidatePainLevel(report.PainLevel)
}

func (s *service) guidance(ctx context.Context, report SymptomReport) GuidanceResult {
	text, fallback := agent.SubmitWithFallback(ctx, s.completer, "triage", guidancePrompt(report), GuidanceFallback)
	return GuidanceResult{Guidance: text, Fallback: fallback}
}

func (s *service) classify(ctx context.Context, report SymptomReport, patient string) (UrgencyResult, error) {
	level, err := ClassifyUrgency(report.Symptoms, report.PainLevel)
	if err != nil {
		return UrgencyResult{}, err
	}
	metrics.RecordClassification(level.String())

	res := UrgencyResult{
		Urgency:                   level,
		Label:                     level.Label(),
		RequiresEmergencyProtocol: level.RequiresEmergencyProtocol(),
		PainSeverity:              PainSeverity(report.PainLevel),
	}
	if level.RequiresEmergencyProtocol() {
		res.EmergencyProtocol = EmergencyProtocol
		s.alertCareTeam(ctx, patient, report)
	}
	return res, nil
}

// Assess classifies the report and asks the model for guidance concurrently.
// The classification never depends on the completion outcome.
func (s *service) Assess(ctx context.Context, report SymptomReport, patient string) (*Assessment, error) {
	if err := validate(report); err != nil {
		return nil, err
	}

	guidance := make(chan GuidanceResult, 1)
	go func() {
		guidance <- s.guidance(ctx, report)
	}()

	urgency, err := s.classify(ctx, report, patient)
	if err != nil {
		return nil, err
	}
	g := <-guidance

	return &Assessment{
		Urgency:                   urgency.Urgency,
		Label:                     urgency.Label,
		RequiresEmergencyProtocol: urgency.RequiresEmergencyProtocol,
		EmergencyProtocol:         urgency.EmergencyProtocol,
		PainLevel:                 report.PainLevel,
		PainSeverity:              urgency.PainSeverity,
		Symptoms:                  report.Symptoms.Tags(),
		Guidance:                  g.Guidance,
		GuidanceFallback:          g.Fallback,
		AssessedAt:                time.Now().UTC(),
	}, nil
}

// Stream emits the urgency and guidance results as separate events, each as
// soon as it is ready. It returns once both have been sent or ctx is done and
// never closes events.
func (s *service) Stream(ctx context.Context, report SymptomReport, patient string, events chan<- Event) error {
	if err := validate(report); err != nil {
		return err
	}

	send := func(e Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		send(Event{Type: EventGuidance, Data: s.guidance(ctx, report)})
	}()

	urgency, err := s.classify(ctx, report, patient)
	if err != nil {
		wg.Wait()
		return err
	}
	send(Event{Type: EventUrgency, Data: urgency})

	wg.Wait()
	return ctx.Err()
}

// alertCareTeam notifies the care team in the background. Failures are logged
// and never reach the patient.
func (s *service) alertCareTeam(ctx context.Context, patient string, report SymptomReport) {
	logger := zerolog.Ctx(ctx)
	if s.alerter == nil || s.chatID == 0 {
		logger.Warn().Str("patient", patient).Msg("emergency classification, care-team channel not configured")
		return
	}

	go func(text string) {
		bgCtx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()

		err := s.alerter.SendMessage(bgCtx, s.chatID, text)
		metrics.RecordCareTeamAlert("emergency", err)
		if err != nil {
			logger.Error().Err(err).Msg("failed to alert care team")
			return
		}
		logger.Info().Msg("care team alerted")
	}(emergencyAlert(patient, report))
}
