package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID           uuid.UUID `json:"id"`
	ProfileID    string    `json:"profile_id,omitempty"`
	Name         string    `json:"name"`
	Diagnosis    string    `json:"diagnosis"`
	Intervention string    `json:"intervention"`
	SurgeryDate  time.Time `json:"surgery_date"`
	Stage        string    `json:"stage"`
	CreatedAt    time.Time `json:"created_at"`
}

type Medication struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	Name       string    `json:"name"`
	Dosage     string    `json:"dosage"`
	Frequency  string    `json:"frequency"`
	TakenToday bool      `json:"taken_today"`
}

// Instruction is a clinical instruction with its plain-language rewrite.
type Instruction struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	Type           string    `json:"instruction_type"`
	OriginalText   string    `json:"original_text"`
	SimplifiedText string    `json:"simplified_text,omitempty"`
}

// CareSummary is everything the dashboards show about one patient.
type CareSummary struct {
	Patient      Patient       `json:"patient"`
	Medications  []Medication  `json:"medications"`
	Instructions []Instruction `json:"instructions"`
	Adherence    int           `json:"adherence"`
}

// Adherence is the share of medications taken today, as a rounded percentage.
// No medications means 0.
func Adherence(meds []Medication) int {
	if len(meds) == 0 {
		return 0
	}
	taken := 0
	for _, m := range meds {
		if m.TakenToday {
			taken++
		}
	}
	return (taken*100 + len(meds)/2) / len(meds)
}
