package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"patient-care-portal/internal/agent"
)

// ReplyFallback is sent when the assistant cannot answer.
const ReplyFallback = "I'm sorry, I'm having trouble responding right now. Please try again later or contact your healthcare team if you have urgent questions."

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrForbidden     = errors.New("consultation belongs to another profile")
)

type Service interface {
	CreateConsultation(ctx context.Context, profileID string) (*Consultation, error)
	GetConsultation(ctx context.Context, id uuid.UUID, profileID string) (*Consultation, error)
	Ask(ctx context.Context, id uuid.UUID, profileID, question string) (*Message, error)
}

type service struct {
	repo      Repository
	completer agent.Completer
}

func NewService(repo Repository, completer agent.Completer) Service {
	return &service{
		repo:      repo,
		completer: completer,
	}
}

func (s *service) CreateConsultation(ctx context.Context, profileID string) (*Consultation, error) {
	now := time.Now().UTC()
	c := &Consultation{
		ID:        uuid.New(),
		ProfileID: profileID,
		History: []Message{
			{Role: RoleAssistant, Content: Greeting, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetConsultation(ctx context.Context, id uuid.UUID, profileID string) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ProfileID != profileID {
		return nil, ErrForbidden
	}
	return c, nil
}

// Ask appends the question and the assistant's reply to the history. A
// failed completion is answered with ReplyFallback rather than an error.
func (s *service) Ask(ctx context.Context, id uuid.UUID, profileID, question string) (*Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	c, err := s.GetConsultation(ctx, id, profileID)
	if err != nil {
		return nil, err
	}

	c.History = append(c.History, Message{
		Role: RoleUser, Content: question, Timestamp: time.Now().UTC(),
	})

	text, fallback := agent.SubmitWithFallback(ctx, s.completer, "chat", chatPrompt(question), ReplyFallback)
	reply := Message{Role: RoleAssistant, Content: text, Fallback: fallback, Timestamp: time.Now().UTC()}
	c.History = append(c.History, reply)

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	return &reply, nil
}

func chatPrompt(question string) string {
	return fmt.Sprintf(`You are a compassionate healthcare assistant helping cardiac patients and their families. Respond to this question with empathy and clear, non-medical advice. Always include appropriate disclaimers about contacting healthcare providers for medical concerns.

Question: %q

Guidelines:
- Be warm and supportive
- Provide general, educational information only
- Do not diagnose or provide specific medical advice
- Encourage communication with healthcare team when appropriate
- Keep responses under 150 words
- Include relevant disclaimers about emergency situations

Response:`, question)
}
