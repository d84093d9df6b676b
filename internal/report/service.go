package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"patient-care-portal/internal/agent"
	"patient-care-portal/internal/platform/metrics"
)

var (
	ErrInvalidRequest = errors.New("invalid report request")
	ErrGeneration     = errors.New("report generation failed")
)

const (
	defaultListLimit = 50
	deliveryTimeout  = 30 * time.Second
)

type TelegramClient interface {
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest, generatedBy string) (*MedicalReport, error)
	Get(ctx context.Context, id uuid.UUID) (*MedicalReport, error)
	List(ctx context.Context, limit int) ([]MedicalReport, error)
	PDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type Options struct {
	FontPath       string
	CareTeamChatID int64
}

type service struct {
	repo      Repository
	completer agent.Completer
	tgClient  TelegramClient
	opts      Options
}

// NewService wires report generation. tg may be nil, which disables delivery.
func NewService(repo Repository, completer agent.Completer, tg TelegramClient, opts Options) Service {
	return &service{
		repo:      repo,
		completer: completer,
		tgClient:  tg,
		opts:      opts,
	}
}

func validate(req GenerateRequest) map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.NaturalLanguageInput) == "" {
		problems["natural_language_input"] = "required"
	}
	if !req.ReportType.Valid() {
		problems["report_type"] = "one of symptom_assessment, medication_analysis, care_summary, progress_report, discharge_summary"
	}
	if req.UrgencyLevel < MinUrgency || req.UrgencyLevel > MaxUrgency {
		problems["urgency_level"] = "must be between 1 and 5"
	}
	return problems
}

// ValidationError carries per-field problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", ErrInvalidRequest, len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// Generate drafts a professional report from clinician notes and stores it.
// A failed completion stores nothing.
func (s *service) Generate(ctx context.Context, req GenerateRequest, generatedBy string) (*MedicalReport, error) {
	if problems := validate(req); len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	output, err := agent.Submit(ctx, s.completer, "report", reportPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	recipients := req.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	r := &MedicalReport{
		ID:                   uuid.New(),
		PatientID:            req.PatientID,
		GeneratedBy:          generatedBy,
		ReportType:           req.ReportType,
		UrgencyLevel:         req.UrgencyLevel,
		NaturalLanguageInput: req.NaturalLanguageInput,
		MedicalJargonOutput:  strings.TrimSpace(output),
		Recipients:           recipients,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	metrics.RecordReportGenerated(string(r.ReportType))

	if req.Deliver {
		s.deliver(ctx, *r)
	}
	return r, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, limit int) ([]MedicalReport, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *service) PDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderPDF(*r, s.opts.FontPath)
}

// deliver renders and sends the PDF on a detached context so the caller does
// not wait for Telegram.
func (s *service) deliver(ctx context.Context, r MedicalReport) {
	logger := zerolog.Ctx(ctx).With().Str("report_id", r.ID.String()).Logger()
	if s.tgClient == nil || s.opts.CareTeamChatID == 0 {
		logger.Warn().Msg("report delivery requested but care-team chat is not configured")
		return
	}

	go func(r MedicalReport) {
		bgCtx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		data, err := RenderPDF(r, s.opts.FontPath)
		if err == nil {
			fileName := fmt.Sprintf("report_%s.pdf", r.ID)
			err = s.tgClient.SendDocument(bgCtx, s.opts.CareTeamChatID, data, fileName)
		}
		metrics.RecordCareTeamAlert("report", err)
		if err != nil {
			logger.Error().Err(err).Msg("failed to deliver report")
			return
		}
		logger.Info().Msg("report delivered to care team")
	}(r)
}

func reportPrompt(req GenerateRequest) string {
	return fmt.Sprintf(`Convert the following patient information into a professional medical report:

Report Type: %s
Urgency Level: %d/5
Patient Information: %s

Please generate a comprehensive medical report using appropriate medical terminology and formatting. Include:
1. Patient presentation summary
2. Clinical assessment
3. Recommendations
4. Follow-up requirements
5. Any urgent concerns if applicable

Format the report professionally for medical documentation.`,
		req.ReportType, req.UrgencyLevel, req.NaturalLanguageInput)
}
