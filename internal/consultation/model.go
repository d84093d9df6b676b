package consultation

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Fallback  bool      `json:"fallback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Consultation is one chat between a profile and the care assistant.
type Consultation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProfileID string    `json:"profile_id" db:"profile_id"`
	History   []Message `json:"history" db:"history"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Greeting opens every consultation.
const Greeting = "Hello! I'm here to help answer your questions about cardiac care. I can provide general information and support, but please remember to contact your healthcare team for medical emergencies or specific medical advice. How can I help you today?"

// QuickQuestions are suggested to the patient before they type anything.
var QuickQuestions = []string{
	"When can I shower after surgery?",
	"What foods should I avoid?",
	"How much walking is safe?",
	"When should I call my doctor?",
	"What are normal side effects?",
	"How long until I feel better?",
}
