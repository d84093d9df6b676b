package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"patient-care-portal/internal/agent"
	"patient-care-portal/internal/patient"
)

var (
	ErrMissingText = errors.New("text is required")
	ErrUnknownKind = errors.New("unknown instruction kind")
	ErrUnavailable = errors.New("assistant unavailable")
)

const (
	titleLimit      = 50
	defaultPriority = 2
)

type InstructionKind string

const (
	KindPreOp   InstructionKind = "pre-op"
	KindPostOp  InstructionKind = "post-op"
	KindGeneral InstructionKind = "general"
)

func ParseInstructionKind(s string) (InstructionKind, error) {
	switch k := InstructionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPreOp, KindPostOp, KindGeneral:
		return k, nil
	case "":
		return KindGeneral, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// knownSideEffects lists the side effects shown for the standard CABG
// medications.
var knownSideEffects = map[string][]string{
	"aspirin":      {"Stomach irritation", "Bleeding risk"},
	"metoprolol":   {"Dizziness", "Fatigue"},
	"atorvastatin": {"Muscle pain", "Liver problems"},
}

func KnownSideEffects(medication string) []string {
	return knownSideEffects[strings.ToLower(strings.TrimSpace(medication))]
}

// Reply is model text, or the fixed fallback when the model failed.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

type Encouragement struct {
	Adherence int `json:"adherence"`
	Reply
}

type SideEffectReport struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Report     string `json:"report"`
}

type SideEffectAnalysis struct {
	KnownSideEffects []string `json:"known_side_effects"`
	Reply
}

// PersonalInstruction is an instruction generated from a patient's request.
type PersonalInstruction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service interface {
	Encourage(ctx context.Context, meds []patient.Medication) Encouragement
	AnalyzeSideEffect(ctx context.Context, r SideEffectReport) (*SideEffectAnalysis, error)
	Simplify(ctx context.Context, kind InstructionKind, text string) (*Reply, error)
	Personalize(ctx context.Context, request string) (*PersonalInstruction, error)
}

type service struct {
	completer agent.Completer
}

func NewService(completer agent.Completer) Service {
	return &service{completer: completer}
}

func (s *service) Encourage(ctx context.Context, meds []patient.Medication) Encouragement {
	var taken, missed []string
	for _, m := range meds {
		if m.TakenToday {
			taken = append(taken, m.Name)
		} else {
			missed = append(missed, m.Name)
		}
	}
	adherence := patient.Adherence(meds)

	text, fallback := agent.SubmitWithFallback(ctx, s.completer, "encouragement",
		encouragementPrompt(adherence, taken, missed), EncouragementFallback)
	return Encouragement{Adherence: adherence, Reply: Reply{Text: text, Fallback: fallback}}
}

func (s *service) AnalyzeSideEffect(ctx context.Context, r SideEffectReport) (*SideEffectAnalysis, error) {
	if strings.TrimSpace(r.Report) == "" || strings.TrimSpace(r.Medication) == "" {
		return nil, ErrMissingText
	}
	known := KnownSideEffects(r.Medication)

	text, fallback := agent.SubmitWithFallback(ctx, s.completer, "side_effect",
		sideEffectPrompt(r.Medication, r.Dosage, r.Report, known), SideEffectFallback)
	if known == nil {
		known = []string{}
	}
	return &SideEffectAnalysis{KnownSideEffects: known, Reply: Reply{Text: text, Fallback: fallback}}, nil
}

func (s *service) Simplify(ctx context.Context, kind InstructionKind, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrMissingText
	}
	out, fallback := agent.SubmitWithFallback(ctx, s.completer, "simplify", simplifyPrompt(kind, text), SimplifyFallback)
	return &Reply{Text: out, Fallback: fallback}, nil
}

// Personalize asks the model for an instruction tailored to request. Nothing
// is produced when the model fails.
func (s *service) Personalize(ctx context.Context, request string) (*PersonalInstruction, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, ErrMissingText
	}

	content, err := agent.Submit(ctx, s.completer, "personalize", personalizePrompt(request))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &PersonalInstruction{
		ID:          uuid.NewString(),
		Type:        "lifestyle",
		Title:       truncateTitle(request),
		Content:     content,
		Priority:    defaultPriority,
		AIGenerated: true,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func truncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= titleLimit {
		return s
	}
	return string([]rune(s)[:titleLimit]) + "..."
}
