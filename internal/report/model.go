package report

import (
	"time"

	"github.com/google/uuid"
)

type ReportType string

const (
	TypeSymptomAssessment  ReportType = "symptom_assessment"
	TypeMedicationAnalysis ReportType = "medication_analysis"
	TypeCareSummary        ReportType = "care_summary"
	TypeProgressReport     ReportType = "progress_report"
	TypeDischargeSummary   ReportType = "discharge_summary"
)

var reportTypeLabels = map[ReportType]string{
	TypeSymptomAssessment:  "Symptom Assessment",
	TypeMedicationAnalysis: "Medication Analysis",
	TypeCareSummary:        "Care Summary",
	TypeProgressReport:     "Progress Report",
	TypeDischargeSummary:   "Discharge Summary",
}

func (t ReportType) Valid() bool {
	_, ok := reportTypeLabels[t]
	return ok
}

func (t ReportType) Label() string {
	if l, ok := reportTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

const (
	MinUrgency = 1
	MaxUrgency = 5
)

var urgencyLabels = [...]string{"", "Low", "Routine", "Moderate", "High", "Critical"}

// UrgencyLabel names a 1..5 report urgency.
func UrgencyLabel(level int) string {
	if level < MinUrgency || level > MaxUrgency {
		return ""
	}
	return urgencyLabels[level]
}

// MedicalReport maps to the medical_reports table.
type MedicalReport struct {
	ID                   uuid.UUID  `json:"id"`
	PatientID            string     `json:"patient_id,omitempty"`
	GeneratedBy          string     `json:"generated_by"`
	ReportType           ReportType `json:"report_type"`
	UrgencyLevel         int        `json:"urgency_level"`
	NaturalLanguageInput string     `json:"natural_language_input"`
	MedicalJargonOutput  string     `json:"medical_jargon_output"`
	Recipients           []string   `json:"recipients"`
	CreatedAt            time.Time  `json:"created_at"`
}

type GenerateRequest struct {
	PatientID            string     `json:"patient_id"`
	ReportType           ReportType `json:"report_type"`
	UrgencyLevel         int        `json:"urgency_level"`
	NaturalLanguageInput string     `json:"natural_language_input"`
	Recipients           []string   `json:"recipients"`
	// Deliver sends the PDF to the care-team chat once stored.
	Deliver bool `json:"deliver"`
}
